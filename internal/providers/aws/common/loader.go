package common

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog/log"
)

// DefaultAWSClientProvider loads profiles through the SDK default credential
// chain. Tests build one with NewDefaultAWSClientProviderWithFactory to swap
// the STS and EC2 clients for fakes while keeping the real loading logic.
type DefaultAWSClientProvider struct {
	factory ClientFactory
}

// NewDefaultAWSClientProvider returns a provider backed by real SDK clients.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet}
}

// NewDefaultAWSClientProviderWithFactory returns a provider whose
// account-level clients come from f.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f}
}

// LoadProfile loads the SDK config for profile ("" for the default chain)
// and looks up the owning account.
//
// Only a config load failure is returned as an error. When STS cannot be
// reached or denies the call, the profile comes back with an empty AccountID
// and the cause in AccountErr, so a run can still inventory the account.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error) {
	name := profileDisplayName(profile)

	opts := []func(*awsconfig.LoadOptions) error{}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", name, err)
	}

	// DescribeRegions and STS need a region to sign against.
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	pc := &ProfileConfig{
		ProfileName: name,
		Region:      cfg.Region,
		Config:      cfg,
		Clients:     p.factory(cfg),
	}

	accountID, err := resolveAccountID(ctx, pc.Clients.STS)
	if err != nil {
		pc.AccountErr = fmt.Errorf("resolve account ID for profile %q: %w", name, err)
		log.Warn().Str("profile", name).Err(err).Msg("account id unavailable")
		return pc, nil
	}
	pc.AccountID = accountID
	return pc, nil
}

// GetActiveRegions returns the regions the account has enabled, sorted by
// name. Every region in the list gets its own slot in the report.
func (p *DefaultAWSClientProvider) GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error) {
	out, err := cfg.Clients.EC2.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		// Opt-in regions the account has not enabled are left out.
		AllRegions: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe regions for profile %q: %w", cfg.ProfileName, err)
	}

	regions := make([]string, 0, len(out.Regions))
	for _, r := range out.Regions {
		if name := aws.ToString(r.RegionName); name != "" {
			regions = append(regions, name)
		}
	}
	sort.Strings(regions)
	return regions, nil
}

// ConfigForRegion returns a copy of cfg.Config bound to region. The
// inventory collectors build their regional clients from it.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// profileDisplayName shows the default chain as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID returns the account that owns the loaded credentials.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", err)
	}
	if out.Account == nil {
		return "", fmt.Errorf("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}
