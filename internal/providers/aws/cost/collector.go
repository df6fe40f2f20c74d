package cost

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// Supported Cost Explorer granularities.
const (
	GranularityDaily   = "DAILY"
	GranularityMonthly = "MONTHLY"
)

// CostQuery is the window and granularity of one download. Start and End are
// YYYY-MM-DD dates; End is exclusive, as Cost Explorer expects.
type CostQuery struct {
	Start       string
	End         string
	Granularity string
}

// CostCollector downloads EC2 compute cost data from Cost Explorer. It must
// not analyse the data; see Analyze.
type CostCollector interface {
	// Download fetches the EC2 compute total per period and the cost per
	// instance type per period for q. Every page is drained.
	Download(ctx context.Context, cfg aws.Config, q CostQuery) (*models.EC2CostData, error)
}
