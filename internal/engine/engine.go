package engine

import (
	"context"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// InventoryOptions configures a single inventory run.
// It is the sole input to Builder.BuildReport.
type InventoryOptions struct {
	// Profile is the named AWS profile to use. Empty means the default profile.
	Profile string

	// Regions is an explicit list of AWS regions to collect.
	// When empty the engine discovers every enabled region.
	Regions []string

	// IncludeIdentity enables the IAM collector. It is consumed only where
	// the global collectors are dispatched.
	IncludeIdentity bool

	// ConcurrencyLimit caps the number of regions collected at once.
	// Values below 1 collect one region at a time.
	ConcurrencyLimit int
}

// Builder is the central orchestration interface.
// It enumerates regions, fans collection out over them, and assembles the
// Report.
//
// Builder must not call the AWS SDK directly; it delegates to the provider
// and collector interfaces.
type Builder interface {
	BuildReport(ctx context.Context, opts InventoryOptions) (*models.Report, error)
}
