package inventory

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// ResolveVPCNames builds the VPC id → name map for one region from the raw
// VPC list. A VPC without a Name tag maps to "", never to its id, so callers
// can tell named and unnamed VPCs apart. A nil list yields an empty map.
func ResolveVPCNames(vpcs []ec2types.Vpc) models.CrossReferenceMap {
	refs := make(models.CrossReferenceMap, len(vpcs))
	for _, v := range vpcs {
		id := aws.ToString(v.VpcId)
		if id == "" {
			continue
		}
		refs[id] = ec2NameTag(v.Tags)
	}
	return refs
}

// LookupName returns the label for id, or "" when id is empty or unknown.
func LookupName(refs models.CrossReferenceMap, id string) string {
	if id == "" {
		return ""
	}
	return refs[id]
}
