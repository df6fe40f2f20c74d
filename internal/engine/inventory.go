package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/metrics"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
	"github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/common"
	awsinventory "github.com/pankaj-dahiya-devops/awsinv/internal/providers/aws/inventory"
)

// InventoryEngine is the production implementation of Builder.
type InventoryEngine struct {
	provider  common.AWSClientProvider
	collector awsinventory.InventoryCollector
	metrics   *metrics.Metrics

	// now is replaced in tests.
	now func() time.Time
}

// NewInventoryEngine constructs an InventoryEngine wired to the supplied
// provider and collector. m may be nil.
func NewInventoryEngine(
	provider common.AWSClientProvider,
	collector awsinventory.InventoryCollector,
	m *metrics.Metrics,
) *InventoryEngine {
	return &InventoryEngine{
		provider:  provider,
		collector: collector,
		metrics:   m,
		now:       time.Now,
	}
}

// BuildReport implements Builder.
//
// It fails only when the SDK config cannot be loaded or the regions cannot
// be enumerated; no collection has started at that point. Every other failure
// lands in Report.Errors, including a failed account id lookup, which leaves
// AccountID empty. Every enumerated region appears in Report.Regions,
// sorted by name, even when all of its collectors failed or ctx was
// cancelled. GeneratedAt is read from the clock once per run.
func (e *InventoryEngine) BuildReport(ctx context.Context, opts InventoryOptions) (*models.Report, error) {
	startedAt := e.now().UTC()

	profile, err := e.provider.LoadProfile(ctx, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", opts.Profile, err)
	}

	regions, err := e.resolveRegions(ctx, profile, opts.Regions)
	if err != nil {
		return nil, fmt.Errorf("enumerate regions for profile %q: %w", profile.ProfileName, err)
	}

	limit := opts.ConcurrencyLimit
	if limit < 1 {
		limit = 1
	}

	log.Info().
		Str("profile", profile.ProfileName).
		Str("account", profile.AccountID).
		Int("regions", len(regions)).
		Int("concurrency", limit).
		Bool("identity", opts.IncludeIdentity).
		Msg("inventory started")

	led := ledger.New()
	// The report is still built without an account id.
	led.Total(models.ScopeGlobal, models.KindAccount, profile.AccountErr)

	results := make([]models.RegionResult, len(regions))
	var global models.GlobalResult

	// Failures never reach the group: collectors record into the ledger, so
	// one region's failure cannot cancel its siblings.
	var g errgroup.Group

	g.Go(func() error {
		cfg := e.provider.ConfigForRegion(profile, awsinventory.GlobalRegion)
		global = e.collector.CollectGlobal(ctx, cfg, opts.IncludeIdentity, led)
		return nil
	})

	sem := make(chan struct{}, limit)
	for i, region := range regions {
		sem <- struct{}{} // acquire; blocks when at capacity
		i, region := i, region

		g.Go(func() error {
			defer func() { <-sem }()

			cfg := e.provider.ConfigForRegion(profile, region)
			result := e.collector.CollectRegion(ctx, cfg, region, led)
			if result == nil {
				result = &models.RegionResult{}
			}
			result.Region = region
			results[i] = *result

			log.Debug().Str("region", region).Msg("region collected")
			return nil
		})
	}
	_ = g.Wait()

	report := &models.Report{
		GeneratedAt: startedAt,
		AccountID:   profile.AccountID,
		Profile:     profile.ProfileName,
		Regions:     results,
		Global:      global,
		Errors:      led.Entries(),
	}
	report.Summary = summarize(report, opts.IncludeIdentity)
	e.recordMetrics(report, startedAt)

	log.Info().
		Int("regions", report.Summary.RegionCount).
		Int("errors", report.Summary.TotalErrors).
		Int("partial_errors", report.Summary.PartialErrors).
		Dur("elapsed", time.Since(startedAt)).
		Msg("inventory finished")

	return report, nil
}

// resolveRegions returns the explicit region list when provided, otherwise
// calls GetActiveRegions to discover enabled regions for the profile.
// The result is trimmed, de-duplicated and sorted either way.
func (e *InventoryEngine) resolveRegions(
	ctx context.Context,
	profile *common.ProfileConfig,
	explicit []string,
) ([]string, error) {
	regions := normalizeRegions(explicit)
	if len(regions) > 0 {
		return regions, nil
	}

	discovered, err := e.provider.GetActiveRegions(ctx, profile)
	if err != nil {
		return nil, err
	}
	return normalizeRegions(discovered), nil
}

func normalizeRegions(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// summarize counts regions, records per kind and ledger entries.
func summarize(report *models.Report, includeIdentity bool) models.ReportSummary {
	s := models.ReportSummary{
		RegionCount:     len(report.Regions),
		ResourceCounts:  make(map[models.ResourceKind]int, len(models.RegionalKinds)+2),
		TotalErrors:     len(report.Errors),
		IdentityEnabled: includeIdentity,
	}
	for _, r := range report.Regions {
		for _, kind := range models.RegionalKinds {
			s.ResourceCounts[kind] += r.Count(kind)
		}
	}
	s.ResourceCounts[models.KindStorage] = report.Global.Count(models.KindStorage)
	if includeIdentity {
		s.ResourceCounts[models.KindIdentity] = report.Global.Count(models.KindIdentity)
	}
	for _, e := range report.Errors {
		if e.Partial {
			s.PartialErrors++
		}
	}
	return s
}

func (e *InventoryEngine) recordMetrics(report *models.Report, startedAt time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordRun(len(report.Regions), startedAt)
	e.metrics.RecordErrors(report.Errors)
	for _, r := range report.Regions {
		for _, kind := range models.RegionalKinds {
			e.metrics.SetResources(r.Region, kind, r.Count(kind))
		}
	}
	e.metrics.SetResources(models.ScopeGlobal, models.KindStorage, report.Global.Count(models.KindStorage))
	if report.Global.Identity != nil {
		e.metrics.SetResources(models.ScopeGlobal, models.KindIdentity, report.Global.Count(models.KindIdentity))
	}
}
