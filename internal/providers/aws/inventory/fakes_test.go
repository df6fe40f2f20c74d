package inventory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfnsvc "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// Every fake returns an empty page when its Func field is nil, so a test only
// wires the calls it cares about. calls counts every invocation.

// ══════════════════════════════════════════════════════════════════════════════
// EC2
// ══════════════════════════════════════════════════════════════════════════════

type mockEC2Client struct {
	calls atomic.Int32

	DescribeVpcsFunc              func(ctx context.Context, params *ec2svc.DescribeVpcsInput) (*ec2svc.DescribeVpcsOutput, error)
	DescribeSubnetsFunc           func(ctx context.Context, params *ec2svc.DescribeSubnetsInput) (*ec2svc.DescribeSubnetsOutput, error)
	DescribeInternetGatewaysFunc  func(ctx context.Context, params *ec2svc.DescribeInternetGatewaysInput) (*ec2svc.DescribeInternetGatewaysOutput, error)
	DescribeNatGatewaysFunc       func(ctx context.Context, params *ec2svc.DescribeNatGatewaysInput) (*ec2svc.DescribeNatGatewaysOutput, error)
	DescribeSecurityGroupsFunc    func(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput) (*ec2svc.DescribeSecurityGroupsOutput, error)
	DescribeInstancesFunc         func(ctx context.Context, params *ec2svc.DescribeInstancesInput) (*ec2svc.DescribeInstancesOutput, error)
	DescribeAvailabilityZonesFunc func(ctx context.Context, params *ec2svc.DescribeAvailabilityZonesInput) (*ec2svc.DescribeAvailabilityZonesOutput, error)
}

func (m *mockEC2Client) DescribeVpcs(ctx context.Context, params *ec2svc.DescribeVpcsInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeVpcsOutput, error) {
	m.calls.Add(1)
	if m.DescribeVpcsFunc == nil {
		return &ec2svc.DescribeVpcsOutput{}, nil
	}
	return m.DescribeVpcsFunc(ctx, params)
}

func (m *mockEC2Client) DescribeSubnets(ctx context.Context, params *ec2svc.DescribeSubnetsInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeSubnetsOutput, error) {
	m.calls.Add(1)
	if m.DescribeSubnetsFunc == nil {
		return &ec2svc.DescribeSubnetsOutput{}, nil
	}
	return m.DescribeSubnetsFunc(ctx, params)
}

func (m *mockEC2Client) DescribeInternetGateways(ctx context.Context, params *ec2svc.DescribeInternetGatewaysInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeInternetGatewaysOutput, error) {
	m.calls.Add(1)
	if m.DescribeInternetGatewaysFunc == nil {
		return &ec2svc.DescribeInternetGatewaysOutput{}, nil
	}
	return m.DescribeInternetGatewaysFunc(ctx, params)
}

func (m *mockEC2Client) DescribeNatGateways(ctx context.Context, params *ec2svc.DescribeNatGatewaysInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeNatGatewaysOutput, error) {
	m.calls.Add(1)
	if m.DescribeNatGatewaysFunc == nil {
		return &ec2svc.DescribeNatGatewaysOutput{}, nil
	}
	return m.DescribeNatGatewaysFunc(ctx, params)
}

func (m *mockEC2Client) DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error) {
	m.calls.Add(1)
	if m.DescribeSecurityGroupsFunc == nil {
		return &ec2svc.DescribeSecurityGroupsOutput{}, nil
	}
	return m.DescribeSecurityGroupsFunc(ctx, params)
}

func (m *mockEC2Client) DescribeInstances(ctx context.Context, params *ec2svc.DescribeInstancesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeInstancesOutput, error) {
	m.calls.Add(1)
	if m.DescribeInstancesFunc == nil {
		return &ec2svc.DescribeInstancesOutput{}, nil
	}
	return m.DescribeInstancesFunc(ctx, params)
}

func (m *mockEC2Client) DescribeAvailabilityZones(ctx context.Context, params *ec2svc.DescribeAvailabilityZonesInput, _ ...func(*ec2svc.Options)) (*ec2svc.DescribeAvailabilityZonesOutput, error) {
	m.calls.Add(1)
	if m.DescribeAvailabilityZonesFunc == nil {
		return &ec2svc.DescribeAvailabilityZonesOutput{}, nil
	}
	return m.DescribeAvailabilityZonesFunc(ctx, params)
}

// ══════════════════════════════════════════════════════════════════════════════
// ELBv2, RDS, Lambda, CloudFormation
// ══════════════════════════════════════════════════════════════════════════════

type mockELBClient struct {
	calls atomic.Int32

	DescribeLoadBalancersFunc func(ctx context.Context, params *elbv2.DescribeLoadBalancersInput) (*elbv2.DescribeLoadBalancersOutput, error)
}

func (m *mockELBClient) DescribeLoadBalancers(ctx context.Context, params *elbv2.DescribeLoadBalancersInput, _ ...func(*elbv2.Options)) (*elbv2.DescribeLoadBalancersOutput, error) {
	m.calls.Add(1)
	if m.DescribeLoadBalancersFunc == nil {
		return &elbv2.DescribeLoadBalancersOutput{}, nil
	}
	return m.DescribeLoadBalancersFunc(ctx, params)
}

type mockRDSClient struct {
	calls atomic.Int32

	DescribeDBInstancesFunc func(ctx context.Context, params *rds.DescribeDBInstancesInput) (*rds.DescribeDBInstancesOutput, error)
}

func (m *mockRDSClient) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	m.calls.Add(1)
	if m.DescribeDBInstancesFunc == nil {
		return &rds.DescribeDBInstancesOutput{}, nil
	}
	return m.DescribeDBInstancesFunc(ctx, params)
}

type mockLambdaClient struct {
	calls atomic.Int32

	ListFunctionsFunc func(ctx context.Context, params *lambdasvc.ListFunctionsInput) (*lambdasvc.ListFunctionsOutput, error)
	ListTagsFunc      func(ctx context.Context, params *lambdasvc.ListTagsInput) (*lambdasvc.ListTagsOutput, error)
}

func (m *mockLambdaClient) ListFunctions(ctx context.Context, params *lambdasvc.ListFunctionsInput, _ ...func(*lambdasvc.Options)) (*lambdasvc.ListFunctionsOutput, error) {
	m.calls.Add(1)
	if m.ListFunctionsFunc == nil {
		return &lambdasvc.ListFunctionsOutput{}, nil
	}
	return m.ListFunctionsFunc(ctx, params)
}

func (m *mockLambdaClient) ListTags(ctx context.Context, params *lambdasvc.ListTagsInput, _ ...func(*lambdasvc.Options)) (*lambdasvc.ListTagsOutput, error) {
	m.calls.Add(1)
	if m.ListTagsFunc == nil {
		return &lambdasvc.ListTagsOutput{}, nil
	}
	return m.ListTagsFunc(ctx, params)
}

type mockCFNClient struct {
	calls atomic.Int32

	DescribeStacksFunc func(ctx context.Context, params *cfnsvc.DescribeStacksInput) (*cfnsvc.DescribeStacksOutput, error)
}

func (m *mockCFNClient) DescribeStacks(ctx context.Context, params *cfnsvc.DescribeStacksInput, _ ...func(*cfnsvc.Options)) (*cfnsvc.DescribeStacksOutput, error) {
	m.calls.Add(1)
	if m.DescribeStacksFunc == nil {
		return &cfnsvc.DescribeStacksOutput{}, nil
	}
	return m.DescribeStacksFunc(ctx, params)
}

// ══════════════════════════════════════════════════════════════════════════════
// S3 and IAM
// ══════════════════════════════════════════════════════════════════════════════

type mockS3Client struct {
	calls atomic.Int32

	// taggingRegions records the region each GetBucketTagging call resolved
	// to after its option functions ran, keyed by bucket.
	mu             sync.Mutex
	taggingRegions map[string]string

	ListBucketsFunc       func(ctx context.Context, params *s3svc.ListBucketsInput) (*s3svc.ListBucketsOutput, error)
	GetBucketLocationFunc func(ctx context.Context, params *s3svc.GetBucketLocationInput) (*s3svc.GetBucketLocationOutput, error)
	GetBucketTaggingFunc  func(ctx context.Context, params *s3svc.GetBucketTaggingInput) (*s3svc.GetBucketTaggingOutput, error)
}

func (m *mockS3Client) ListBuckets(ctx context.Context, params *s3svc.ListBucketsInput, _ ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	m.calls.Add(1)
	if m.ListBucketsFunc == nil {
		return &s3svc.ListBucketsOutput{}, nil
	}
	return m.ListBucketsFunc(ctx, params)
}

func (m *mockS3Client) GetBucketLocation(ctx context.Context, params *s3svc.GetBucketLocationInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketLocationOutput, error) {
	m.calls.Add(1)
	if m.GetBucketLocationFunc == nil {
		return &s3svc.GetBucketLocationOutput{}, nil
	}
	return m.GetBucketLocationFunc(ctx, params)
}

func (m *mockS3Client) GetBucketTagging(ctx context.Context, params *s3svc.GetBucketTaggingInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketTaggingOutput, error) {
	m.calls.Add(1)
	opts := s3svc.Options{Region: GlobalRegion}
	for _, fn := range optFns {
		fn(&opts)
	}
	m.mu.Lock()
	if m.taggingRegions == nil {
		m.taggingRegions = map[string]string{}
	}
	m.taggingRegions[aws.ToString(params.Bucket)] = opts.Region
	m.mu.Unlock()
	if m.GetBucketTaggingFunc == nil {
		return &s3svc.GetBucketTaggingOutput{}, nil
	}
	return m.GetBucketTaggingFunc(ctx, params)
}

type mockIAMClient struct {
	calls atomic.Int32

	ListUsersFunc                func(ctx context.Context, params *iamsvc.ListUsersInput) (*iamsvc.ListUsersOutput, error)
	ListRolesFunc                func(ctx context.Context, params *iamsvc.ListRolesInput) (*iamsvc.ListRolesOutput, error)
	ListAttachedUserPoliciesFunc func(ctx context.Context, params *iamsvc.ListAttachedUserPoliciesInput) (*iamsvc.ListAttachedUserPoliciesOutput, error)
	ListUserPoliciesFunc         func(ctx context.Context, params *iamsvc.ListUserPoliciesInput) (*iamsvc.ListUserPoliciesOutput, error)
	ListAttachedRolePoliciesFunc func(ctx context.Context, params *iamsvc.ListAttachedRolePoliciesInput) (*iamsvc.ListAttachedRolePoliciesOutput, error)
	ListRolePoliciesFunc         func(ctx context.Context, params *iamsvc.ListRolePoliciesInput) (*iamsvc.ListRolePoliciesOutput, error)
}

func (m *mockIAMClient) ListUsers(ctx context.Context, params *iamsvc.ListUsersInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error) {
	m.calls.Add(1)
	if m.ListUsersFunc == nil {
		return &iamsvc.ListUsersOutput{}, nil
	}
	return m.ListUsersFunc(ctx, params)
}

func (m *mockIAMClient) ListRoles(ctx context.Context, params *iamsvc.ListRolesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListRolesOutput, error) {
	m.calls.Add(1)
	if m.ListRolesFunc == nil {
		return &iamsvc.ListRolesOutput{}, nil
	}
	return m.ListRolesFunc(ctx, params)
}

func (m *mockIAMClient) ListAttachedUserPolicies(ctx context.Context, params *iamsvc.ListAttachedUserPoliciesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListAttachedUserPoliciesOutput, error) {
	m.calls.Add(1)
	if m.ListAttachedUserPoliciesFunc == nil {
		return &iamsvc.ListAttachedUserPoliciesOutput{}, nil
	}
	return m.ListAttachedUserPoliciesFunc(ctx, params)
}

func (m *mockIAMClient) ListUserPolicies(ctx context.Context, params *iamsvc.ListUserPoliciesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListUserPoliciesOutput, error) {
	m.calls.Add(1)
	if m.ListUserPoliciesFunc == nil {
		return &iamsvc.ListUserPoliciesOutput{}, nil
	}
	return m.ListUserPoliciesFunc(ctx, params)
}

func (m *mockIAMClient) ListAttachedRolePolicies(ctx context.Context, params *iamsvc.ListAttachedRolePoliciesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListAttachedRolePoliciesOutput, error) {
	m.calls.Add(1)
	if m.ListAttachedRolePoliciesFunc == nil {
		return &iamsvc.ListAttachedRolePoliciesOutput{}, nil
	}
	return m.ListAttachedRolePoliciesFunc(ctx, params)
}

func (m *mockIAMClient) ListRolePolicies(ctx context.Context, params *iamsvc.ListRolePoliciesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListRolePoliciesOutput, error) {
	m.calls.Add(1)
	if m.ListRolePoliciesFunc == nil {
		return &iamsvc.ListRolePoliciesOutput{}, nil
	}
	return m.ListRolePoliciesFunc(ctx, params)
}

// ══════════════════════════════════════════════════════════════════════════════
// Factories
// ══════════════════════════════════════════════════════════════════════════════

type fakeRegional struct {
	EC2    *mockEC2Client
	ELB    *mockELBClient
	RDS    *mockRDSClient
	Lambda *mockLambdaClient
	CFN    *mockCFNClient
}

func newFakeRegional() *fakeRegional {
	return &fakeRegional{
		EC2:    &mockEC2Client{},
		ELB:    &mockELBClient{},
		RDS:    &mockRDSClient{},
		Lambda: &mockLambdaClient{},
		CFN:    &mockCFNClient{},
	}
}

func (f *fakeRegional) calls() int32 {
	return f.EC2.calls.Load() + f.ELB.calls.Load() + f.RDS.calls.Load() + f.Lambda.calls.Load() + f.CFN.calls.Load()
}

func (f *fakeRegional) factory() regionalClientFactory {
	return func(_ aws.Config) *regionalClients {
		return &regionalClients{EC2: f.EC2, ELB: f.ELB, RDS: f.RDS, Lambda: f.Lambda, CFN: f.CFN}
	}
}

type fakeGlobal struct {
	S3  *mockS3Client
	IAM *mockIAMClient

	region string
}

func newFakeGlobal() *fakeGlobal {
	return &fakeGlobal{S3: &mockS3Client{}, IAM: &mockIAMClient{}}
}

func (f *fakeGlobal) factory() globalClientFactory {
	return func(cfg aws.Config) *globalClients {
		f.region = cfg.Region
		return &globalClients{S3: f.S3, IAM: f.IAM}
	}
}
