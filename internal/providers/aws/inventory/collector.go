package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// InventoryCollector collects the resources of one AWS account.
//
// Implementations never return errors to the caller. Every provider failure
// is recorded in rec and the affected set is left nil (kind failure) or
// defaulted (item failure), so a single failing call never aborts the run.
type InventoryCollector interface {
	// CollectRegion runs every regional collector for region using cfg, which
	// must already be scoped to region. The result is never nil.
	CollectRegion(ctx context.Context, cfg aws.Config, region string, rec ledger.Recorder) *models.RegionResult

	// CollectGlobal runs the account-wide collectors once. The identity
	// collector runs only when includeIdentity is true.
	CollectGlobal(ctx context.Context, cfg aws.Config, includeIdentity bool, rec ledger.Recorder) models.GlobalResult
}
