package cost

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	ce "github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

const (
	ec2ComputeService = "Amazon Elastic Compute Cloud - Compute"
	costMetric        = "UnblendedCost"
	unknownType       = "UNKNOWN"
)

// ec2ComputeFilter restricts a query to EC2 instance usage.
func ec2ComputeFilter() *cetypes.Expression {
	return &cetypes.Expression{
		Dimensions: &cetypes.DimensionValues{
			Key:    cetypes.DimensionService,
			Values: []string{ec2ComputeService},
		},
	}
}

// getCostAndUsage runs in with every NextPageToken drained and returns the
// concatenated ResultsByTime.
func getCostAndUsage(ctx context.Context, client costCEClient, in *ce.GetCostAndUsageInput) ([]cetypes.ResultByTime, error) {
	var results []cetypes.ResultByTime
	var nextToken *string
	for {
		in.NextPageToken = nextToken
		out, err := client.GetCostAndUsage(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage: %w", err)
		}
		results = append(results, out.ResultsByTime...)

		if out.NextPageToken == nil {
			break
		}
		nextToken = out.NextPageToken
	}
	return results, nil
}

// collectEC2Total returns one point per period with the total EC2 compute
// cost, in the order Cost Explorer returned them.
func collectEC2Total(ctx context.Context, client costCEClient, q CostQuery) ([]models.CostPoint, error) {
	results, err := getCostAndUsage(ctx, client, &ce.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(q.Start),
			End:   aws.String(q.End),
		},
		Granularity: cetypes.Granularity(q.Granularity),
		Metrics:     []string{costMetric},
		Filter:      ec2ComputeFilter(),
	})
	if err != nil {
		return nil, err
	}

	points := make([]models.CostPoint, 0, len(results))
	for _, r := range results {
		var amount float64
		if m, ok := r.Total[costMetric]; ok {
			amount = parseCostFloat(m.Amount)
		}
		points = append(points, models.CostPoint{
			Date:    periodStart(r),
			CostUSD: amount,
		})
	}
	return points, nil
}

// collectEC2CostByInstanceType returns one point per (period, instance type)
// group. Groups without keys are reported as UNKNOWN.
func collectEC2CostByInstanceType(ctx context.Context, client costCEClient, q CostQuery) ([]models.InstanceTypeCost, error) {
	results, err := getCostAndUsage(ctx, client, &ce.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(q.Start),
			End:   aws.String(q.End),
		},
		Granularity: cetypes.Granularity(q.Granularity),
		Metrics:     []string{costMetric},
		Filter:      ec2ComputeFilter(),
		GroupBy: []cetypes.GroupDefinition{
			{
				Key:  aws.String("INSTANCE_TYPE"),
				Type: cetypes.GroupDefinitionTypeDimension,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	points := make([]models.InstanceTypeCost, 0)
	for _, r := range results {
		date := periodStart(r)
		for _, group := range r.Groups {
			itype := unknownType
			if len(group.Keys) > 0 {
				itype = group.Keys[0]
			}
			metric, ok := group.Metrics[costMetric]
			if !ok {
				continue
			}
			points = append(points, models.InstanceTypeCost{
				Date:         date,
				InstanceType: itype,
				CostUSD:      parseCostFloat(metric.Amount),
			})
		}
	}
	return points, nil
}

func periodStart(r cetypes.ResultByTime) string {
	if r.TimePeriod == nil {
		return ""
	}
	return aws.ToString(r.TimePeriod.Start)
}

// parseCostFloat converts a Cost Explorer amount string to float64.
// Nil or malformed amounts are 0.
func parseCostFloat(s *string) float64 {
	if s == nil {
		return 0
	}
	v, _ := strconv.ParseFloat(*s, 64)
	return v
}
