package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ProfileConfig is what an inventory run knows about the account before it
// starts collecting: which profile was loaded, whose account it is, and the
// SDK config every regional client is cloned from.
type ProfileConfig struct {
	// ProfileName is the shared-config profile, or "default".
	ProfileName string

	// AccountID comes from STS GetCallerIdentity. It is empty when
	// AccountErr is set.
	AccountID string

	// AccountErr holds the failed account lookup, if any. The profile is
	// still usable: region discovery and collection do not depend on it.
	AccountErr error

	// Region is the profile's home region; us-east-1 when none is configured.
	Region string

	// Config is the loaded SDK configuration.
	Config aws.Config

	// Clients are the account-level clients bound to Region.
	Clients *ClientSet
}

// AWSClientProvider resolves a profile and the regions to inventory for it.
// The engine, the cost command and doctor all go through it, so tests can
// substitute a fake for every AWS call made before collection starts.
type AWSClientProvider interface {
	// LoadProfile loads the named profile ("" for the default chain). An
	// error means no SDK config could be built. A failed account lookup is
	// reported through ProfileConfig.AccountErr instead.
	LoadProfile(ctx context.Context, profile string) (*ProfileConfig, error)

	// GetActiveRegions lists the account's enabled regions sorted by name.
	// An error here means no regional work can be done.
	GetActiveRegions(ctx context.Context, cfg *ProfileConfig) ([]string, error)

	// ConfigForRegion returns a copy of the profile's config bound to region.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
