package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	elbv2 "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbv2types "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectNetwork lists the VPCs of region and, for each VPC, its subnets,
// internet gateways and NAT gateways, followed by the region's security
// groups, load balancers and availability zones.
//
// Only the VPC listing is required: if it fails the whole kind fails and the
// returned map is empty. Every other call is an enrichment whose failure is
// recorded as partial while the rest of the set is kept. The returned map is
// the region's VPC name cross-reference, built before security groups and
// load balancers are labelled.
func collectNetwork(
	ctx context.Context,
	ec2Client ec2APIClient,
	elbClient elbAPIClient,
	region string,
	rec ledger.Recorder,
) (*models.NetworkSet, models.CrossReferenceMap, error) {
	rawVPCs, err := listVPCs(ctx, ec2Client)
	if err != nil {
		return nil, models.CrossReferenceMap{}, fmt.Errorf("describe vpcs in %s: %w", region, err)
	}
	refs := ResolveVPCNames(rawVPCs)

	set := &models.NetworkSet{VPCs: make([]models.AWSVPC, 0, len(rawVPCs))}
	for _, v := range rawVPCs {
		vpc := newVPC(v)
		if ctx.Err() == nil {
			enrichVPC(ctx, ec2Client, &vpc, region, rec)
		}
		set.VPCs = append(set.VPCs, vpc)
	}

	// After cancellation the remaining VPCs are kept bare and no further
	// lookups are issued; one entry covers everything skipped.
	if err := ctx.Err(); err != nil {
		rec.Partial(region, models.KindNetwork, "enrichment", fmt.Errorf("network enrichment in %s stopped: %w", region, err))
		return set, refs, nil
	}

	if groups, err := listSecurityGroups(ctx, ec2Client, refs); err != nil {
		rec.Partial(region, models.KindNetwork, "security-groups", fmt.Errorf("describe security groups in %s: %w", region, err))
	} else {
		set.SecurityGroups = groups
	}

	if lbs, err := listLoadBalancers(ctx, elbClient, refs); err != nil {
		rec.Partial(region, models.KindNetwork, "load-balancers", fmt.Errorf("describe load balancers in %s: %w", region, err))
	} else {
		set.LoadBalancers = lbs
	}

	if zones, err := listAvailabilityZones(ctx, ec2Client); err != nil {
		rec.Partial(region, models.KindNetwork, "availability-zones", fmt.Errorf("describe availability zones in %s: %w", region, err))
	} else {
		set.AvailabilityZones = zones
	}

	return set, refs, nil
}

// listVPCs drains the DescribeVpcs paginator.
func listVPCs(ctx context.Context, client ec2APIClient) ([]ec2types.Vpc, error) {
	var vpcs []ec2types.Vpc
	paginator := ec2svc.NewDescribeVpcsPaginator(client, &ec2svc.DescribeVpcsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		vpcs = append(vpcs, page.Vpcs...)
	}
	return vpcs, nil
}

func newVPC(v ec2types.Vpc) models.AWSVPC {
	return models.AWSVPC{
		VPCID:            aws.ToString(v.VpcId),
		Name:             ec2NameTag(v.Tags),
		CIDRBlock:        aws.ToString(v.CidrBlock),
		IsDefault:        aws.ToBool(v.IsDefault),
		State:            string(v.State),
		Subnets:          []models.AWSSubnet{},
		InternetGateways: []models.AWSInternetGateway{},
		NATGateways:      []models.AWSNATGateway{},
		Tags:             ec2Tags(v.Tags),
	}
}

// enrichVPC attaches the subnets and gateways of vpc. Each lookup is filtered
// by the VPC id; a failed lookup leaves that slice empty and records a
// partial error against the VPC. It returns early once ctx is done.
func enrichVPC(ctx context.Context, client ec2APIClient, vpc *models.AWSVPC, region string, rec ledger.Recorder) {
	id := vpc.VPCID

	if subnets, err := listSubnets(ctx, client, id); err != nil {
		rec.Partial(region, models.KindNetwork, id, fmt.Errorf("describe subnets of %s: %w", id, err))
	} else {
		vpc.Subnets = subnets
	}
	if ctx.Err() != nil {
		return
	}

	if igws, err := listInternetGateways(ctx, client, id); err != nil {
		rec.Partial(region, models.KindNetwork, id, fmt.Errorf("describe internet gateways of %s: %w", id, err))
	} else {
		vpc.InternetGateways = igws
	}
	if ctx.Err() != nil {
		return
	}

	if nats, err := listNATGateways(ctx, client, id); err != nil {
		rec.Partial(region, models.KindNetwork, id, fmt.Errorf("describe nat gateways of %s: %w", id, err))
	} else {
		vpc.NATGateways = nats
	}
}

func vpcFilter(name, vpcID string) []ec2types.Filter {
	return []ec2types.Filter{{Name: aws.String(name), Values: []string{vpcID}}}
}

func listSubnets(ctx context.Context, client ec2APIClient, vpcID string) ([]models.AWSSubnet, error) {
	subnets := []models.AWSSubnet{}
	paginator := ec2svc.NewDescribeSubnetsPaginator(client, &ec2svc.DescribeSubnetsInput{
		Filters: vpcFilter("vpc-id", vpcID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Subnets {
			subnets = append(subnets, models.AWSSubnet{
				SubnetID:            aws.ToString(s.SubnetId),
				Name:                ec2NameTag(s.Tags),
				CIDRBlock:           aws.ToString(s.CidrBlock),
				AvailabilityZone:    aws.ToString(s.AvailabilityZone),
				MapPublicIPOnLaunch: aws.ToBool(s.MapPublicIpOnLaunch),
				State:               string(s.State),
				Tags:                ec2Tags(s.Tags),
			})
		}
	}
	return subnets, nil
}

func listInternetGateways(ctx context.Context, client ec2APIClient, vpcID string) ([]models.AWSInternetGateway, error) {
	igws := []models.AWSInternetGateway{}
	paginator := ec2svc.NewDescribeInternetGatewaysPaginator(client, &ec2svc.DescribeInternetGatewaysInput{
		Filters: vpcFilter("attachment.vpc-id", vpcID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, g := range page.InternetGateways {
			attached := make([]string, 0, len(g.Attachments))
			for _, a := range g.Attachments {
				attached = append(attached, aws.ToString(a.VpcId))
			}
			igws = append(igws, models.AWSInternetGateway{
				InternetGatewayID: aws.ToString(g.InternetGatewayId),
				Name:              ec2NameTag(g.Tags),
				AttachedVPCIDs:    attached,
				Tags:              ec2Tags(g.Tags),
			})
		}
	}
	return igws, nil
}

func listNATGateways(ctx context.Context, client ec2APIClient, vpcID string) ([]models.AWSNATGateway, error) {
	nats := []models.AWSNATGateway{}
	// DescribeNatGateways takes Filter (singular), unlike the other EC2 calls.
	paginator := ec2svc.NewDescribeNatGatewaysPaginator(client, &ec2svc.DescribeNatGatewaysInput{
		Filter: vpcFilter("vpc-id", vpcID),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range page.NatGateways {
			nat := models.AWSNATGateway{
				NATGatewayID:     aws.ToString(n.NatGatewayId),
				Name:             ec2NameTag(n.Tags),
				State:            string(n.State),
				SubnetID:         aws.ToString(n.SubnetId),
				ConnectivityType: string(n.ConnectivityType),
				PublicIPs:        []string{},
				PrivateIPs:       []string{},
				CreateTime:       n.CreateTime,
				Tags:             ec2Tags(n.Tags),
			}
			for _, addr := range n.NatGatewayAddresses {
				if ip := aws.ToString(addr.PublicIp); ip != "" {
					nat.PublicIPs = append(nat.PublicIPs, ip)
				}
				if ip := aws.ToString(addr.PrivateIp); ip != "" {
					nat.PrivateIPs = append(nat.PrivateIPs, ip)
				}
			}
			nats = append(nats, nat)
		}
	}
	return nats, nil
}

// listSecurityGroups returns every security group in the region with its
// inbound and outbound rules flattened to one entry per source.
func listSecurityGroups(ctx context.Context, client ec2APIClient, refs models.CrossReferenceMap) ([]models.AWSSecurityGroup, error) {
	groups := []models.AWSSecurityGroup{}
	paginator := ec2svc.NewDescribeSecurityGroupsPaginator(client, &ec2svc.DescribeSecurityGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, sg := range page.SecurityGroups {
			vpcID := aws.ToString(sg.VpcId)
			groups = append(groups, models.AWSSecurityGroup{
				GroupID:     aws.ToString(sg.GroupId),
				GroupName:   aws.ToString(sg.GroupName),
				Description: aws.ToString(sg.Description),
				VPCID:       vpcID,
				VPCName:     LookupName(refs, vpcID),
				Inbound:     flattenPermissions(sg.IpPermissions),
				Outbound:    flattenPermissions(sg.IpPermissionsEgress),
				Tags:        ec2Tags(sg.Tags),
			})
		}
	}
	return groups, nil
}

// flattenPermissions expands each IpPermission into one rule per IPv4 range,
// IPv6 range, prefix list and referenced security group. A permission with
// no sources at all is kept as a single rule so that it is not lost.
func flattenPermissions(perms []ec2types.IpPermission) []models.AWSSecurityGroupRule {
	rules := []models.AWSSecurityGroupRule{}
	for _, p := range perms {
		base := models.AWSSecurityGroupRule{
			Protocol: aws.ToString(p.IpProtocol),
			FromPort: -1,
			ToPort:   -1,
		}
		if p.FromPort != nil {
			base.FromPort = aws.ToInt32(p.FromPort)
		}
		if p.ToPort != nil {
			base.ToPort = aws.ToInt32(p.ToPort)
		}

		before := len(rules)
		for _, r := range p.IpRanges {
			rule := base
			rule.CIDR = aws.ToString(r.CidrIp)
			rule.Description = aws.ToString(r.Description)
			rules = append(rules, rule)
		}
		for _, r := range p.Ipv6Ranges {
			rule := base
			rule.CIDR = aws.ToString(r.CidrIpv6)
			rule.Description = aws.ToString(r.Description)
			rules = append(rules, rule)
		}
		for _, pl := range p.PrefixListIds {
			rule := base
			rule.PrefixListID = aws.ToString(pl.PrefixListId)
			rule.Description = aws.ToString(pl.Description)
			rules = append(rules, rule)
		}
		for _, pair := range p.UserIdGroupPairs {
			rule := base
			rule.SourceGroupID = aws.ToString(pair.GroupId)
			rule.Description = aws.ToString(pair.Description)
			rules = append(rules, rule)
		}
		if len(rules) == before {
			rules = append(rules, base)
		}
	}
	return rules
}

func listLoadBalancers(ctx context.Context, client elbAPIClient, refs models.CrossReferenceMap) ([]models.AWSLoadBalancer, error) {
	lbs := []models.AWSLoadBalancer{}
	paginator := elbv2.NewDescribeLoadBalancersPaginator(client, &elbv2.DescribeLoadBalancersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, lb := range page.LoadBalancers {
			lbs = append(lbs, toLoadBalancer(lb, refs))
		}
	}
	return lbs, nil
}

func toLoadBalancer(lb elbv2types.LoadBalancer, refs models.CrossReferenceMap) models.AWSLoadBalancer {
	var state string
	if lb.State != nil {
		state = string(lb.State.Code)
	}
	vpcID := aws.ToString(lb.VpcId)
	return models.AWSLoadBalancer{
		LoadBalancerARN:  aws.ToString(lb.LoadBalancerArn),
		LoadBalancerName: aws.ToString(lb.LoadBalancerName),
		Type:             string(lb.Type),
		Scheme:           string(lb.Scheme),
		State:            state,
		DNSName:          aws.ToString(lb.DNSName),
		VPCID:            vpcID,
		VPCName:          LookupName(refs, vpcID),
		CreatedTime:      lb.CreatedTime,
	}
}

// listAvailabilityZones returns the zones available to the account in the
// client's region. DescribeAvailabilityZones is not paginated.
func listAvailabilityZones(ctx context.Context, client ec2APIClient) ([]models.AWSAvailabilityZone, error) {
	out, err := client.DescribeAvailabilityZones(ctx, &ec2svc.DescribeAvailabilityZonesInput{
		AllAvailabilityZones: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	zones := make([]models.AWSAvailabilityZone, 0, len(out.AvailabilityZones))
	for _, z := range out.AvailabilityZones {
		zones = append(zones, models.AWSAvailabilityZone{
			ZoneName:    aws.ToString(z.ZoneName),
			ZoneID:      aws.ToString(z.ZoneId),
			State:       string(z.State),
			OptInStatus: string(z.OptInStatus),
		})
	}
	return zones, nil
}
