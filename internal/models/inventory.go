package models

import "time"

// ResourceKind identifies one collector's resource category.
type ResourceKind string

const (
	KindNetwork  ResourceKind = "network"
	KindCompute  ResourceKind = "compute"
	KindDatabase ResourceKind = "database"
	KindFunction ResourceKind = "function"
	KindStack    ResourceKind = "stack"
	KindStorage  ResourceKind = "storage"
	KindIdentity ResourceKind = "identity"

	// KindAccount marks a failed account id lookup. It has no resource set.
	KindAccount ResourceKind = "account"
)

// RegionalKinds lists the per-region resource kinds in collection order.
var RegionalKinds = []ResourceKind{KindNetwork, KindCompute, KindDatabase, KindFunction, KindStack}

// ScopeGlobal is the CollectionError scope used by global collectors.
const ScopeGlobal = "global"

// Report is the complete inventory produced by one run.
// GeneratedAt is captured once when the run starts and is shared by every
// region and global result in the report.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at_utc"`
	AccountID   string            `json:"account_id"`
	Profile     string            `json:"profile"`
	Regions     []RegionResult    `json:"regions"`
	Global      GlobalResult      `json:"global"`
	Errors      []CollectionError `json:"errors"`
	Summary     ReportSummary     `json:"summary"`
}

// RegionResult holds every resource set collected in one region.
// A nil set means that kind's collector failed entirely; the failure is in
// Report.Errors. A collector that succeeded with no resources yields a
// non-nil set with empty slices.
type RegionResult struct {
	Region   string       `json:"region"`
	Network  *NetworkSet  `json:"network,omitempty"`
	Compute  *ComputeSet  `json:"compute,omitempty"`
	Database *DatabaseSet `json:"database,omitempty"`
	Function *FunctionSet `json:"function,omitempty"`
	Stack    *StackSet    `json:"stack,omitempty"`
}

// Has reports whether the set for kind is present.
func (r RegionResult) Has(kind ResourceKind) bool {
	switch kind {
	case KindNetwork:
		return r.Network != nil
	case KindCompute:
		return r.Compute != nil
	case KindDatabase:
		return r.Database != nil
	case KindFunction:
		return r.Function != nil
	case KindStack:
		return r.Stack != nil
	}
	return false
}

// Count returns the number of primary records of kind: VPCs for network,
// instances for compute and database, functions and stacks. A missing set
// counts as zero.
func (r RegionResult) Count(kind ResourceKind) int {
	switch kind {
	case KindNetwork:
		if r.Network != nil {
			return len(r.Network.VPCs)
		}
	case KindCompute:
		if r.Compute != nil {
			return len(r.Compute.Instances)
		}
	case KindDatabase:
		if r.Database != nil {
			return len(r.Database.Instances)
		}
	case KindFunction:
		if r.Function != nil {
			return len(r.Function.Functions)
		}
	case KindStack:
		if r.Stack != nil {
			return len(r.Stack.Stacks)
		}
	}
	return 0
}

// NetworkSet is the network topology of one region. SecurityGroups,
// LoadBalancers and AvailabilityZones are nil when their list call failed
// while the VPC listing itself succeeded.
type NetworkSet struct {
	VPCs              []AWSVPC              `json:"vpcs"`
	SecurityGroups    []AWSSecurityGroup    `json:"security_groups"`
	LoadBalancers     []AWSLoadBalancer     `json:"load_balancers"`
	AvailabilityZones []AWSAvailabilityZone `json:"availability_zones"`
}

// ComputeSet holds the EC2 instances of one region.
type ComputeSet struct {
	Instances []AWSEC2Instance `json:"instances"`
}

// DatabaseSet holds the RDS instances of one region.
type DatabaseSet struct {
	Instances []AWSDBInstance `json:"instances"`
}

// FunctionSet holds the Lambda functions of one region.
type FunctionSet struct {
	Functions []AWSLambdaFunction `json:"functions"`
}

// StackSet holds the CloudFormation stacks of one region.
type StackSet struct {
	Stacks []AWSStack `json:"stacks"`
}

// GlobalResult holds resources that are not scoped to a region.
// Identity is nil unless identity collection was requested and succeeded.
type GlobalResult struct {
	Buckets  []AWSS3Bucket   `json:"s3_buckets"`
	Identity *IdentityResult `json:"identity,omitempty"`
}

// Count returns the number of buckets for storage and of users plus roles
// for identity.
func (g GlobalResult) Count(kind ResourceKind) int {
	switch kind {
	case KindStorage:
		return len(g.Buckets)
	case KindIdentity:
		if g.Identity != nil {
			return len(g.Identity.Users) + len(g.Identity.Roles)
		}
	}
	return 0
}

// IdentityResult is the IAM inventory of the account.
type IdentityResult struct {
	Users []AWSIAMUser `json:"users"`
	Roles []AWSIAMRole `json:"roles"`
}

// CollectionError records one failed provider call.
//
// Partial is false when the collector produced no result for Kind in Scope
// and true when it returned its records with Item's enrichment missing.
type CollectionError struct {
	Scope   string       `json:"scope"`
	Kind    ResourceKind `json:"kind"`
	Item    string       `json:"item,omitempty"`
	Code    string       `json:"code,omitempty"`
	Cause   string       `json:"cause"`
	Partial bool         `json:"partial"`
}

// CrossReferenceMap maps a resource ID to its display label within one
// region. IDs are only unique inside a region, so maps are never shared
// across regions.
type CrossReferenceMap map[string]string

// ReportSummary holds aggregate counts derived from a Report.
type ReportSummary struct {
	RegionCount     int                  `json:"region_count"`
	ResourceCounts  map[ResourceKind]int `json:"resource_counts"`
	TotalErrors     int                  `json:"total_errors"`
	PartialErrors   int                  `json:"partial_errors"`
	IdentityEnabled bool                 `json:"identity_enabled"`
}
