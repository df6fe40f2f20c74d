package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSClient looks up the account that owns the loaded credentials. The
// inventory report carries that account id in its header.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// EC2RegionClient lists the regions a run fans out over.
type EC2RegionClient interface {
	DescribeRegions(
		ctx context.Context,
		params *ec2.DescribeRegionsInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeRegionsOutput, error)
}

// ClientSet holds the two account-level clients needed before any region is
// inventoried. Regional and global resource clients are built later by the
// inventory package.
type ClientSet struct {
	STS STSClient
	EC2 EC2RegionClient
}

// ClientFactory builds a ClientSet for the profile's home region.
type ClientFactory func(cfg aws.Config) *ClientSet

// NewClientSet is the ClientFactory backed by real SDK clients.
func NewClientSet(cfg aws.Config) *ClientSet {
	return &ClientSet{
		STS: sts.NewFromConfig(cfg),
		EC2: ec2.NewFromConfig(cfg),
	}
}
