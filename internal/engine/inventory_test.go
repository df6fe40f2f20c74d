package engine

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/metrics"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
	"github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/common"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeProvider struct {
	regions    []string
	regionsErr error
	loadErr    error
	accountErr error

	regionCalls atomic.Int32
}

func (p *fakeProvider) LoadProfile(_ context.Context, profile string) (*common.ProfileConfig, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	name := profile
	if name == "" {
		name = "default"
	}
	if p.accountErr != nil {
		return &common.ProfileConfig{ProfileName: name, Region: "us-east-1", AccountErr: p.accountErr}, nil
	}
	return &common.ProfileConfig{ProfileName: name, AccountID: "111122223333", Region: "us-east-1"}, nil
}

func (p *fakeProvider) GetActiveRegions(_ context.Context, _ *common.ProfileConfig) ([]string, error) {
	p.regionCalls.Add(1)
	return p.regions, p.regionsErr
}

func (p *fakeProvider) ConfigForRegion(_ *common.ProfileConfig, region string) aws.Config {
	return aws.Config{Region: region}
}

// fakeCollector returns empty sets for every kind unless regionFn is set.
// It tracks how many regions are in flight at once.
type fakeCollector struct {
	regionFn func(ctx context.Context, region string, rec ledger.Recorder) *models.RegionResult
	globalFn func(ctx context.Context, includeIdentity bool, rec ledger.Recorder) models.GlobalResult

	mu            sync.Mutex
	regionCalls   []string
	globalCalls   int
	identityFlags []bool
	cfgRegions    map[string]string

	active    atomic.Int32
	maxActive atomic.Int32
	delay     time.Duration
}

func emptyRegion(region string) *models.RegionResult {
	return &models.RegionResult{
		Region:   region,
		Network:  &models.NetworkSet{VPCs: []models.AWSVPC{}},
		Compute:  &models.ComputeSet{Instances: []models.AWSEC2Instance{}},
		Database: &models.DatabaseSet{Instances: []models.AWSDBInstance{}},
		Function: &models.FunctionSet{Functions: []models.AWSLambdaFunction{}},
		Stack:    &models.StackSet{Stacks: []models.AWSStack{}},
	}
}

func (c *fakeCollector) CollectRegion(ctx context.Context, cfg aws.Config, region string, rec ledger.Recorder) *models.RegionResult {
	n := c.active.Add(1)
	defer c.active.Add(-1)
	for {
		cur := c.maxActive.Load()
		if n <= cur || c.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	c.mu.Lock()
	c.regionCalls = append(c.regionCalls, region)
	if c.cfgRegions == nil {
		c.cfgRegions = map[string]string{}
	}
	c.cfgRegions[region] = cfg.Region
	c.mu.Unlock()

	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.regionFn != nil {
		return c.regionFn(ctx, region, rec)
	}
	return emptyRegion(region)
}

func (c *fakeCollector) CollectGlobal(ctx context.Context, cfg aws.Config, includeIdentity bool, rec ledger.Recorder) models.GlobalResult {
	c.mu.Lock()
	c.globalCalls++
	c.identityFlags = append(c.identityFlags, includeIdentity)
	if c.cfgRegions == nil {
		c.cfgRegions = map[string]string{}
	}
	c.cfgRegions["global"] = cfg.Region
	c.mu.Unlock()

	if c.globalFn != nil {
		return c.globalFn(ctx, includeIdentity, rec)
	}
	result := models.GlobalResult{Buckets: []models.AWSS3Bucket{}}
	if includeIdentity {
		result.Identity = &models.IdentityResult{Users: []models.AWSIAMUser{}, Roles: []models.AWSIAMRole{}}
	}
	return result
}

// fixedClock returns t0 plus one minute per call and counts the calls.
type fixedClock struct {
	t0    time.Time
	calls int
}

func (c *fixedClock) now() time.Time {
	t := c.t0.Add(time.Duration(c.calls) * time.Minute)
	c.calls++
	return t
}

func newTestEngine(p *fakeProvider, c *fakeCollector, m *metrics.Metrics) (*InventoryEngine, *fixedClock) {
	clock := &fixedClock{t0: time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))}
	e := NewInventoryEngine(p, c, m)
	e.now = clock.now
	return e, clock
}

// ── BuildReport ──────────────────────────────────────────────────────────────

func TestBuildReport_NetworkFailureInOneRegion(t *testing.T) {
	provider := &fakeProvider{regions: []string{"us-east-1", "eu-west-1"}}
	collector := &fakeCollector{
		regionFn: func(_ context.Context, region string, rec ledger.Recorder) *models.RegionResult {
			r := emptyRegion(region)
			if region == "us-east-1" {
				r.Network = nil
				rec.Total(region, models.KindNetwork, errors.New("describe vpcs in us-east-1: UnauthorizedOperation"))
				r.Compute.Instances = []models.AWSEC2Instance{{InstanceID: "i-1"}, {InstanceID: "i-2"}}
			}
			return r
		},
	}
	e, _ := newTestEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: 2})
	require.NoError(t, err)

	require.Len(t, report.Regions, 2)
	assert.Equal(t, "eu-west-1", report.Regions[0].Region)
	assert.Equal(t, "us-east-1", report.Regions[1].Region)

	east := report.Regions[1]
	assert.Nil(t, east.Network)
	require.NotNil(t, east.Compute)
	assert.Len(t, east.Compute.Instances, 2)

	west := report.Regions[0]
	for _, kind := range models.RegionalKinds {
		assert.True(t, west.Has(kind), "eu-west-1 %s", kind)
	}

	require.Len(t, report.Errors, 1)
	assert.Equal(t, "us-east-1", report.Errors[0].Scope)
	assert.Equal(t, models.KindNetwork, report.Errors[0].Kind)
	assert.False(t, report.Errors[0].Partial)

	assert.Equal(t, 2, report.Summary.RegionCount)
	assert.Equal(t, 2, report.Summary.ResourceCounts[models.KindCompute])
	assert.Equal(t, 1, report.Summary.TotalErrors)
	assert.Zero(t, report.Summary.PartialErrors)
}

func TestBuildReport_EveryRegionPresentAndSorted(t *testing.T) {
	regions := []string{"us-west-2", "ap-south-1", "eu-central-1", "ca-central-1", "sa-east-1", "af-south-1"}
	provider := &fakeProvider{regions: regions}
	collector := &fakeCollector{
		regionFn: func(_ context.Context, region string, rec ledger.Recorder) *models.RegionResult {
			for _, kind := range models.RegionalKinds {
				rec.Total(region, kind, errors.New("AccessDenied"))
			}
			return &models.RegionResult{Region: region}
		},
	}
	e, _ := newTestEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: 3})
	require.NoError(t, err)

	got := make([]string, 0, len(report.Regions))
	for _, r := range report.Regions {
		got = append(got, r.Region)
	}
	assert.Equal(t, []string{"af-south-1", "ap-south-1", "ca-central-1", "eu-central-1", "sa-east-1", "us-west-2"}, got)
	assert.Len(t, report.Errors, len(regions)*len(models.RegionalKinds))
}

func TestBuildReport_EnumerationFailureStartsNoWork(t *testing.T) {
	provider := &fakeProvider{regionsErr: errors.New("UnauthorizedOperation")}
	collector := &fakeCollector{}
	e, _ := newTestEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "enumerate regions")
	assert.Contains(t, err.Error(), "UnauthorizedOperation")
	assert.Empty(t, collector.regionCalls)
	assert.Zero(t, collector.globalCalls)
}

func TestBuildReport_ConfigLoadFailure(t *testing.T) {
	provider := &fakeProvider{loadErr: errors.New("failed to get shared config profile, prod")}
	collector := &fakeCollector{}
	e, _ := newTestEngine(provider, collector, nil)

	_, err := e.BuildReport(context.Background(), InventoryOptions{Profile: "prod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `load profile "prod"`)
	assert.Zero(t, provider.regionCalls.Load())
	assert.Zero(t, collector.globalCalls)
}

func TestBuildReport_AccountLookupFailureIsRecorded(t *testing.T) {
	provider := &fakeProvider{
		regions:    []string{"eu-west-1", "us-east-1"},
		accountErr: errors.New("STS GetCallerIdentity: AccessDenied"),
	}
	collector := &fakeCollector{}
	e, _ := newTestEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.AccountID)
	assert.Len(t, report.Regions, 2)
	assert.Equal(t, 1, collector.globalCalls)

	require.Len(t, report.Errors, 1)
	entry := report.Errors[0]
	assert.Equal(t, models.ScopeGlobal, entry.Scope)
	assert.Equal(t, models.KindAccount, entry.Kind)
	assert.False(t, entry.Partial)
	assert.Contains(t, entry.Cause, "AccessDenied")
	assert.Equal(t, 1, report.Summary.TotalErrors)
	assert.Zero(t, report.Summary.PartialErrors)
}

// deniedSTS rejects every caller identity lookup.
type deniedSTS struct{}

func (deniedSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized to perform sts:GetCallerIdentity"}
}

type staticRegions struct{ names []string }

func (r staticRegions) DescribeRegions(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	out := &ec2.DescribeRegionsOutput{}
	for _, n := range r.names {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: aws.String(n)})
	}
	return out, nil
}

func TestBuildReport_DefaultProviderSurvivesDeniedSTS(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	provider := common.NewDefaultAWSClientProviderWithFactory(func(aws.Config) *common.ClientSet {
		return &common.ClientSet{STS: deniedSTS{}, EC2: staticRegions{names: []string{"eu-west-1"}}}
	})
	collector := &fakeCollector{}
	e := NewInventoryEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: 2})
	require.NoError(t, err)
	assert.Empty(t, report.AccountID)
	require.Len(t, report.Regions, 1)
	assert.Equal(t, "eu-west-1", report.Regions[0].Region)

	require.Len(t, report.Errors, 1)
	assert.Equal(t, models.KindAccount, report.Errors[0].Kind)
	assert.Equal(t, "AccessDenied", report.Errors[0].Code)
	assert.False(t, report.Errors[0].Partial)
}

func TestBuildReport_SingleTimestamp(t *testing.T) {
	provider := &fakeProvider{regions: []string{"eu-west-1", "us-east-1"}}
	e, clock := newTestEngine(provider, &fakeCollector{}, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, clock.calls, "the clock is read once per run")
	assert.Equal(t, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), report.GeneratedAt)
	assert.Equal(t, time.UTC, report.GeneratedAt.Location())
}

func TestBuildReport_Idempotent(t *testing.T) {
	provider := &fakeProvider{regions: []string{"us-east-1", "eu-west-1", "ap-south-1"}}
	collector := &fakeCollector{
		regionFn: func(_ context.Context, region string, rec ledger.Recorder) *models.RegionResult {
			r := emptyRegion(region)
			r.Compute.Instances = []models.AWSEC2Instance{{InstanceID: "i-" + region}, {InstanceID: "i-b"}}
			rec.Partial(region, models.KindFunction, "fn", errors.New("throttled"))
			rec.Total(region, models.KindStack, errors.New("AccessDenied"))
			r.Stack = nil
			return r
		},
	}
	e, _ := newTestEngine(provider, collector, nil)

	first, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: 3, IncludeIdentity: true})
	require.NoError(t, err)
	second, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: 3, IncludeIdentity: true})
	require.NoError(t, err)

	assert.NotEqual(t, first.GeneratedAt, second.GeneratedAt)
	first.GeneratedAt, second.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, first, second)
	assert.Len(t, first.Errors, 6, "no ledger state survives between runs")
}

func TestBuildReport_ConcurrencyLimit(t *testing.T) {
	regions := []string{"r-1", "r-2", "r-3", "r-4", "r-5", "r-6", "r-7", "r-8"}

	tests := []struct {
		name  string
		limit int
		want  int32
	}{
		{name: "zero means sequential", limit: 0, want: 1},
		{name: "negative means sequential", limit: -4, want: 1},
		{name: "bounded", limit: 3, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := &fakeCollector{delay: 20 * time.Millisecond}
			e, _ := newTestEngine(&fakeProvider{regions: regions}, collector, nil)

			report, err := e.BuildReport(context.Background(), InventoryOptions{ConcurrencyLimit: tt.limit})
			require.NoError(t, err)
			assert.Len(t, report.Regions, len(regions))
			assert.LessOrEqual(t, collector.maxActive.Load(), tt.want)
			assert.Len(t, collector.regionCalls, len(regions))
		})
	}
}

func TestBuildReport_ExplicitRegionsSkipDiscovery(t *testing.T) {
	provider := &fakeProvider{regions: []string{"should-not-be-used"}}
	collector := &fakeCollector{}
	e, _ := newTestEngine(provider, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{
		Regions: []string{" us-east-1", "eu-west-1", "us-east-1", ""},
	})
	require.NoError(t, err)

	assert.Zero(t, provider.regionCalls.Load())
	require.Len(t, report.Regions, 2)
	assert.Equal(t, "eu-west-1", report.Regions[0].Region)
	assert.Equal(t, "us-east-1", report.Regions[1].Region)
	assert.Equal(t, "eu-west-1", collector.cfgRegions["eu-west-1"], "each region gets a region-scoped config")
	assert.Equal(t, "us-east-1", collector.cfgRegions["global"])
}

func TestBuildReport_IdentityFlagReachesGlobalDispatchOnly(t *testing.T) {
	for _, include := range []bool{false, true} {
		collector := &fakeCollector{}
		e, _ := newTestEngine(&fakeProvider{regions: []string{"eu-west-1"}}, collector, nil)

		report, err := e.BuildReport(context.Background(), InventoryOptions{IncludeIdentity: include})
		require.NoError(t, err)

		assert.Equal(t, []bool{include}, collector.identityFlags)
		assert.Equal(t, include, report.Global.Identity != nil)
		assert.Equal(t, include, report.Summary.IdentityEnabled)
		_, counted := report.Summary.ResourceCounts[models.KindIdentity]
		assert.Equal(t, include, counted)
	}
}

func TestBuildReport_CancelledContextKeepsEveryRegion(t *testing.T) {
	provider := &fakeProvider{regions: []string{"eu-west-1", "us-east-1"}}
	collector := &fakeCollector{
		regionFn: func(ctx context.Context, region string, rec ledger.Recorder) *models.RegionResult {
			if err := ctx.Err(); err != nil {
				for _, kind := range models.RegionalKinds {
					rec.Total(region, kind, err)
				}
				return &models.RegionResult{Region: region}
			}
			return emptyRegion(region)
		},
	}
	e, _ := newTestEngine(provider, collector, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.BuildReport(ctx, InventoryOptions{ConcurrencyLimit: 2})
	require.NoError(t, err)
	require.Len(t, report.Regions, 2)
	assert.Len(t, report.Errors, 10)
}

func TestBuildReport_NilRegionResultIsStillListed(t *testing.T) {
	collector := &fakeCollector{
		regionFn: func(_ context.Context, _ string, _ ledger.Recorder) *models.RegionResult { return nil },
	}
	e, _ := newTestEngine(&fakeProvider{regions: []string{"eu-west-1"}}, collector, nil)

	report, err := e.BuildReport(context.Background(), InventoryOptions{})
	require.NoError(t, err)
	require.Len(t, report.Regions, 1)
	assert.Equal(t, "eu-west-1", report.Regions[0].Region)
}

func TestBuildReport_RecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	collector := &fakeCollector{
		regionFn: func(_ context.Context, region string, rec ledger.Recorder) *models.RegionResult {
			r := emptyRegion(region)
			r.Compute.Instances = []models.AWSEC2Instance{{InstanceID: "i-1"}}
			rec.Partial(region, models.KindFunction, "fn", errors.New("throttled"))
			return r
		},
	}
	e, _ := newTestEngine(&fakeProvider{regions: []string{"eu-west-1", "us-east-1"}}, collector, m)

	_, err := e.BuildReport(context.Background(), InventoryOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Regions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResourcesCollected.WithLabelValues("eu-west-1", "compute")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Errors.WithLabelValues("function", "true")))
	assert.Equal(t, float64(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC).Unix()), testutil.ToFloat64(m.LastRunTimestamp))
}

func TestNormalizeRegions(t *testing.T) {
	assert.Equal(t, []string{}, normalizeRegions(nil))
	assert.Equal(t, []string{"a", "b"}, normalizeRegions([]string{"b", " a ", "b", "  "}))
}
