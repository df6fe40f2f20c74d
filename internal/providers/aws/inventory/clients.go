package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfnsvc "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// ---------------------------------------------------------------------------
// Narrow client interfaces
//
// Each interface lists only the read-only SDK operations used by this
// package. The real SDK clients satisfy them automatically, and each one also
// satisfies the matching SDK paginator client interface.
// ---------------------------------------------------------------------------

// ec2APIClient covers the EC2 describe calls used by the network and compute
// collectors.
type ec2APIClient interface {
	ec2svc.DescribeVpcsAPIClient
	ec2svc.DescribeSubnetsAPIClient
	ec2svc.DescribeInternetGatewaysAPIClient
	ec2svc.DescribeNatGatewaysAPIClient
	ec2svc.DescribeSecurityGroupsAPIClient
	ec2svc.DescribeInstancesAPIClient
	DescribeAvailabilityZones(ctx context.Context, params *ec2svc.DescribeAvailabilityZonesInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeAvailabilityZonesOutput, error)
}

// elbAPIClient covers the ELBv2 calls used by the network collector.
type elbAPIClient interface {
	elbv2.DescribeLoadBalancersAPIClient
}

// rdsAPIClient covers the RDS calls used by the database collector.
type rdsAPIClient interface {
	rds.DescribeDBInstancesAPIClient
}

// lambdaAPIClient covers the Lambda calls used by the function collector.
// ListTags is an auxiliary per-function lookup.
type lambdaAPIClient interface {
	lambdasvc.ListFunctionsAPIClient
	ListTags(ctx context.Context, params *lambdasvc.ListTagsInput, optFns ...func(*lambdasvc.Options)) (*lambdasvc.ListTagsOutput, error)
}

// cfnAPIClient covers the CloudFormation calls used by the stack collector.
type cfnAPIClient interface {
	cfnsvc.DescribeStacksAPIClient
}

// s3APIClient covers the S3 calls used by the storage collector.
// GetBucketLocation and GetBucketTagging are per-bucket lookups.
type s3APIClient interface {
	s3svc.ListBucketsAPIClient
	GetBucketLocation(ctx context.Context, params *s3svc.GetBucketLocationInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketLocationOutput, error)
	GetBucketTagging(ctx context.Context, params *s3svc.GetBucketTaggingInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketTaggingOutput, error)
}

// iamAPIClient covers the IAM calls used by the identity collector. Every
// embedded interface is an SDK paginator client.
type iamAPIClient interface {
	iamsvc.ListUsersAPIClient
	iamsvc.ListRolesAPIClient
	iamsvc.ListAttachedUserPoliciesAPIClient
	iamsvc.ListUserPoliciesAPIClient
	iamsvc.ListAttachedRolePoliciesAPIClient
	iamsvc.ListRolePoliciesAPIClient
}

// ---------------------------------------------------------------------------
// Client bundles and factories
// ---------------------------------------------------------------------------

// regionalClients holds the clients for one region. All fields are
// interfaces; swap any with a fake in tests.
type regionalClients struct {
	EC2    ec2APIClient
	ELB    elbAPIClient
	RDS    rdsAPIClient
	Lambda lambdaAPIClient
	CFN    cfnAPIClient
}

// globalClients holds the clients for account-wide services.
type globalClients struct {
	S3  s3APIClient
	IAM iamAPIClient
}

// regionalClientFactory creates regionalClients from a region-scoped config.
type regionalClientFactory func(cfg aws.Config) *regionalClients

// globalClientFactory creates globalClients from a config. The collector
// pins the config to GlobalRegion before calling it.
type globalClientFactory func(cfg aws.Config) *globalClients

func newDefaultRegionalClients(cfg aws.Config) *regionalClients {
	return &regionalClients{
		EC2:    ec2svc.NewFromConfig(cfg),
		ELB:    elbv2.NewFromConfig(cfg),
		RDS:    rds.NewFromConfig(cfg),
		Lambda: lambdasvc.NewFromConfig(cfg),
		CFN:    cfnsvc.NewFromConfig(cfg),
	}
}

func newDefaultGlobalClients(cfg aws.Config) *globalClients {
	return &globalClients{
		S3:  s3svc.NewFromConfig(cfg),
		IAM: iamsvc.NewFromConfig(cfg),
	}
}
