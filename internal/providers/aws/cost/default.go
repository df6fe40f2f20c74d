package cost

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/rs/zerolog/log"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// DefaultCostCollector is the production implementation of CostCollector.
//
// Inject a custom costClientFactory via NewDefaultCostCollectorWithFactory
// to replace the real SDK client with a mock in unit tests.
type DefaultCostCollector struct {
	factory costClientFactory
}

// NewDefaultCostCollector returns a collector backed by the real AWS SDK.
func NewDefaultCostCollector() *DefaultCostCollector {
	return &DefaultCostCollector{factory: newDefaultCostClient}
}

// NewDefaultCostCollectorWithFactory returns a collector that uses f to
// create its Cost Explorer client. Pass a mock factory in tests.
func NewDefaultCostCollectorWithFactory(f costClientFactory) *DefaultCostCollector {
	return &DefaultCostCollector{factory: f}
}

// Download implements CostCollector. The two queries run one after the other;
// either failing fails the download.
func (d *DefaultCostCollector) Download(ctx context.Context, cfg aws.Config, q CostQuery) (*models.EC2CostData, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	client := d.factory(cfg)

	daily, err := collectEC2Total(ctx, client, q)
	if err != nil {
		return nil, fmt.Errorf("download EC2 cost total: %w", err)
	}
	byType, err := collectEC2CostByInstanceType(ctx, client, q)
	if err != nil {
		return nil, fmt.Errorf("download EC2 cost by instance type: %w", err)
	}

	log.Debug().
		Str("start", q.Start).
		Str("end", q.End).
		Int("periods", len(daily)).
		Int("type_points", len(byType)).
		Msg("downloaded EC2 cost data")

	return &models.EC2CostData{
		PeriodStart:    q.Start,
		PeriodEnd:      q.End,
		Granularity:    q.Granularity,
		Daily:          daily,
		ByInstanceType: byType,
	}, nil
}

func (q CostQuery) validate() error {
	switch q.Granularity {
	case GranularityDaily, GranularityMonthly:
	default:
		return fmt.Errorf("invalid granularity %q, must be %s or %s", q.Granularity, GranularityDaily, GranularityMonthly)
	}
	if q.Start == "" || q.End == "" {
		return fmt.Errorf("cost query needs both start and end dates")
	}
	return nil
}
