package models

import "time"

// ---------------------------------------------------------------------------
// Network resource models
// ---------------------------------------------------------------------------

// AWSVPC is a single VPC with the gateways and subnets attached to it.
type AWSVPC struct {
	VPCID            string               `json:"vpc_id"`
	Name             string               `json:"name"`
	CIDRBlock        string               `json:"cidr_block"`
	IsDefault        bool                 `json:"is_default"`
	State            string               `json:"state"`
	Subnets          []AWSSubnet          `json:"subnets"`
	InternetGateways []AWSInternetGateway `json:"internet_gateways"`
	NATGateways      []AWSNATGateway      `json:"nat_gateways"`
	Tags             map[string]string    `json:"tags"`
}

// AWSSubnet is a subnet inside a VPC.
type AWSSubnet struct {
	SubnetID            string            `json:"subnet_id"`
	Name                string            `json:"name"`
	CIDRBlock           string            `json:"cidr_block"`
	AvailabilityZone    string            `json:"availability_zone"`
	MapPublicIPOnLaunch bool              `json:"map_public_ip_on_launch"`
	State               string            `json:"state"`
	Tags                map[string]string `json:"tags"`
}

// AWSInternetGateway is an internet gateway attached to a VPC.
type AWSInternetGateway struct {
	InternetGatewayID string            `json:"internet_gateway_id"`
	Name              string            `json:"name"`
	AttachedVPCIDs    []string          `json:"attached_vpc_ids"`
	Tags              map[string]string `json:"tags"`
}

// AWSNATGateway is a NAT gateway placed in one of a VPC's subnets.
type AWSNATGateway struct {
	NATGatewayID     string            `json:"nat_gateway_id"`
	Name             string            `json:"name"`
	State            string            `json:"state"`
	SubnetID         string            `json:"subnet_id"`
	ConnectivityType string            `json:"connectivity_type"`
	PublicIPs        []string          `json:"public_ips"`
	PrivateIPs       []string          `json:"private_ips"`
	CreateTime       *time.Time        `json:"create_time,omitempty"`
	Tags             map[string]string `json:"tags"`
}

// AWSSecurityGroup is a security group with its flattened ingress and egress rules.
type AWSSecurityGroup struct {
	GroupID     string                 `json:"group_id"`
	GroupName   string                 `json:"group_name"`
	Description string                 `json:"description"`
	VPCID       string                 `json:"vpc_id"`
	VPCName     string                 `json:"vpc_name"`
	Inbound     []AWSSecurityGroupRule `json:"inbound"`
	Outbound    []AWSSecurityGroupRule `json:"outbound"`
	Tags        map[string]string      `json:"tags"`
}

// AWSSecurityGroupRule is one permission entry of a security group. Protocol
// "-1" means all protocols; FromPort and ToPort are -1 when the rule has no
// port range. Exactly one of CIDR, PrefixListID or SourceGroupID is set.
type AWSSecurityGroupRule struct {
	Protocol      string `json:"protocol"`
	FromPort      int32  `json:"from_port"`
	ToPort        int32  `json:"to_port"`
	CIDR          string `json:"cidr,omitempty"`
	PrefixListID  string `json:"prefix_list_id,omitempty"`
	SourceGroupID string `json:"source_group_id,omitempty"`
	Description   string `json:"description,omitempty"`
}

// AWSLoadBalancer is an Elastic Load Balancing v2 load balancer.
type AWSLoadBalancer struct {
	LoadBalancerARN  string     `json:"load_balancer_arn"`
	LoadBalancerName string     `json:"load_balancer_name"`
	Type             string     `json:"type"`
	Scheme           string     `json:"scheme"`
	State            string     `json:"state"`
	DNSName          string     `json:"dns_name"`
	VPCID            string     `json:"vpc_id"`
	VPCName          string     `json:"vpc_name"`
	CreatedTime      *time.Time `json:"created_time,omitempty"`
}

// AWSAvailabilityZone is one availability zone enabled in a region.
type AWSAvailabilityZone struct {
	ZoneName    string `json:"zone_name"`
	ZoneID      string `json:"zone_id"`
	State       string `json:"state"`
	OptInStatus string `json:"opt_in_status"`
}

// ---------------------------------------------------------------------------
// Compute, database, function and stack models
// ---------------------------------------------------------------------------

// AWSEC2Instance is a single EC2 instance. VPCName is resolved from the
// region's VPC Name tags and is empty when the VPC has no name.
type AWSEC2Instance struct {
	InstanceID       string            `json:"instance_id"`
	Name             string            `json:"name"`
	State            string            `json:"state"`
	InstanceType     string            `json:"instance_type"`
	PrivateIP        string            `json:"private_ip"`
	PublicIP         string            `json:"public_ip"`
	VPCID            string            `json:"vpc_id"`
	VPCName          string            `json:"vpc_name"`
	SubnetID         string            `json:"subnet_id"`
	AvailabilityZone string            `json:"availability_zone"`
	SecurityGroupIDs []string          `json:"security_group_ids"`
	LaunchTime       *time.Time        `json:"launch_time,omitempty"`
	Tags             map[string]string `json:"tags"`
}

// AWSDBInstance is a single RDS database instance.
type AWSDBInstance struct {
	DBInstanceID       string            `json:"db_instance_id"`
	DBInstanceClass    string            `json:"db_instance_class"`
	Engine             string            `json:"engine"`
	EngineVersion      string            `json:"engine_version"`
	Status             string            `json:"status"`
	EndpointAddress    string            `json:"endpoint_address"`
	Port               int32             `json:"port"`
	MultiAZ            bool              `json:"multi_az"`
	PubliclyAccessible bool              `json:"publicly_accessible"`
	VPCID              string            `json:"vpc_id"`
	VPCName            string            `json:"vpc_name"`
	Tags               map[string]string `json:"tags"`
}

// AWSLambdaFunction is a single Lambda function. Tags is an empty map when the
// per-function tag lookup failed.
type AWSLambdaFunction struct {
	FunctionName string            `json:"function_name"`
	FunctionARN  string            `json:"function_arn"`
	Runtime      string            `json:"runtime"`
	Handler      string            `json:"handler"`
	LastModified string            `json:"last_modified"`
	Role         string            `json:"role"`
	TimeoutSec   int32             `json:"timeout_seconds"`
	MemoryMB     int32             `json:"memory_mb"`
	Tags         map[string]string `json:"tags"`
}

// AWSStack is a single CloudFormation stack.
type AWSStack struct {
	StackName       string            `json:"stack_name"`
	StackID         string            `json:"stack_id"`
	Status          string            `json:"status"`
	CreationTime    *time.Time        `json:"creation_time,omitempty"`
	LastUpdatedTime *time.Time        `json:"last_updated_time,omitempty"`
	Description     string            `json:"description"`
	Tags            map[string]string `json:"tags"`
}

// ---------------------------------------------------------------------------
// Global resource models
// ---------------------------------------------------------------------------

// UnknownRegion is the bucket region used when the location lookup fails.
const UnknownRegion = "unknown"

// AWSS3Bucket is a single S3 bucket with its home region.
type AWSS3Bucket struct {
	Name         string            `json:"name"`
	CreationDate *time.Time        `json:"creation_date,omitempty"`
	Region       string            `json:"region"`
	Tags         map[string]string `json:"tags"`
}

// AWSAttachedPolicy is a managed policy attached to a user or role.
type AWSAttachedPolicy struct {
	PolicyName string `json:"policy_name"`
	PolicyARN  string `json:"policy_arn"`
}

// AWSIAMUser is an IAM user with its policies.
type AWSIAMUser struct {
	UserName         string              `json:"user_name"`
	UserID           string              `json:"user_id"`
	ARN              string              `json:"arn"`
	CreateDate       *time.Time          `json:"create_date,omitempty"`
	AttachedPolicies []AWSAttachedPolicy `json:"attached_policies"`
	InlinePolicies   []string            `json:"inline_policies"`
}

// AWSIAMRole is an IAM role with its policies.
type AWSIAMRole struct {
	RoleName         string              `json:"role_name"`
	RoleID           string              `json:"role_id"`
	ARN              string              `json:"arn"`
	CreateDate       *time.Time          `json:"create_date,omitempty"`
	AttachedPolicies []AWSAttachedPolicy `json:"attached_policies"`
	InlinePolicies   []string            `json:"inline_policies"`
}
