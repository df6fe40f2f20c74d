package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectDatabase pages through every RDS instance in region. The VPC is
// taken from the instance's DB subnet group.
func collectDatabase(ctx context.Context, client rdsAPIClient, region string, refs models.CrossReferenceMap) (*models.DatabaseSet, error) {
	set := &models.DatabaseSet{Instances: []models.AWSDBInstance{}}

	paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db instances in %s: %w", region, err)
		}
		for _, db := range page.DBInstances {
			set.Instances = append(set.Instances, toDBInstance(db, refs))
		}
	}
	return set, nil
}

func toDBInstance(db rdstypes.DBInstance, refs models.CrossReferenceMap) models.AWSDBInstance {
	var vpcID string
	if db.DBSubnetGroup != nil {
		vpcID = aws.ToString(db.DBSubnetGroup.VpcId)
	}

	var address string
	var port int32
	if db.Endpoint != nil {
		address = aws.ToString(db.Endpoint.Address)
		port = aws.ToInt32(db.Endpoint.Port)
	}

	return models.AWSDBInstance{
		DBInstanceID:       aws.ToString(db.DBInstanceIdentifier),
		DBInstanceClass:    aws.ToString(db.DBInstanceClass),
		Engine:             aws.ToString(db.Engine),
		EngineVersion:      aws.ToString(db.EngineVersion),
		Status:             aws.ToString(db.DBInstanceStatus),
		EndpointAddress:    address,
		Port:               port,
		MultiAZ:            aws.ToBool(db.MultiAZ),
		PubliclyAccessible: aws.ToBool(db.PubliclyAccessible),
		VPCID:              vpcID,
		VPCName:            LookupName(refs, vpcID),
		Tags:               rdsTags(db.TagList),
	}
}
