package cost

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
)

// ceRegion is where Cost Explorer is served from. It is a global service and
// the us-east-1 endpoint is the one every partition account can reach.
const ceRegion = "us-east-1"

// costCEClient covers the Cost Explorer operations required for the EC2 cost
// download. The real *costexplorer.Client satisfies it automatically.
type costCEClient interface {
	GetCostAndUsage(
		ctx context.Context,
		params *ce.GetCostAndUsageInput,
		optFns ...func(*ce.Options),
	) (*ce.GetCostAndUsageOutput, error)
}

// costClientFactory creates a Cost Explorer client from an aws.Config.
type costClientFactory func(cfg aws.Config) costCEClient

// newDefaultCostClient is the production costClientFactory. The region in cfg
// is overridden to ceRegion.
func newDefaultCostClient(cfg aws.Config) costCEClient {
	ceCfg := cfg
	ceCfg.Region = ceRegion
	return ce.NewFromConfig(ceCfg)
}
