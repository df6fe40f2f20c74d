package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectCompute pages through every EC2 instance in region, in every state,
// and labels each with its VPC's name from refs.
func collectCompute(ctx context.Context, client ec2APIClient, region string, refs models.CrossReferenceMap) (*models.ComputeSet, error) {
	set := &models.ComputeSet{Instances: []models.AWSEC2Instance{}}

	paginator := ec2svc.NewDescribeInstancesPaginator(client, &ec2svc.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances in %s: %w", region, err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				set.Instances = append(set.Instances, toEC2Instance(inst, refs))
			}
		}
	}
	return set, nil
}

// toEC2Instance converts an SDK EC2 instance to the internal model.
func toEC2Instance(inst ec2types.Instance, refs models.CrossReferenceMap) models.AWSEC2Instance {
	var state string
	if inst.State != nil {
		state = string(inst.State.Name)
	}

	var az string
	if inst.Placement != nil {
		az = aws.ToString(inst.Placement.AvailabilityZone)
	}

	groups := make([]string, 0, len(inst.SecurityGroups))
	for _, g := range inst.SecurityGroups {
		groups = append(groups, aws.ToString(g.GroupId))
	}

	vpcID := aws.ToString(inst.VpcId)
	return models.AWSEC2Instance{
		InstanceID:       aws.ToString(inst.InstanceId),
		Name:             ec2NameTag(inst.Tags),
		State:            state,
		InstanceType:     string(inst.InstanceType),
		PrivateIP:        aws.ToString(inst.PrivateIpAddress),
		PublicIP:         aws.ToString(inst.PublicIpAddress),
		VPCID:            vpcID,
		VPCName:          LookupName(refs, vpcID),
		SubnetID:         aws.ToString(inst.SubnetId),
		AvailabilityZone: az,
		SecurityGroupIDs: groups,
		LaunchTime:       inst.LaunchTime,
		Tags:             ec2Tags(inst.Tags),
	}
}
