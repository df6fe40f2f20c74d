package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectIdentity returns all IAM users and roles in the account with their
// attached managed policies and inline policy names. Failing to list users or
// roles fails the kind. A failed policy lookup for one principal keeps the
// principal with empty policy lists and records a partial error for it.
func collectIdentity(ctx context.Context, client iamAPIClient, rec ledger.Recorder) (*models.IdentityResult, error) {
	users, err := collectIAMUsers(ctx, client, rec)
	if err != nil {
		return nil, err
	}
	roles, err := collectIAMRoles(ctx, client, rec)
	if err != nil {
		return nil, err
	}
	return &models.IdentityResult{Users: users, Roles: roles}, nil
}

func collectIAMUsers(ctx context.Context, client iamAPIClient, rec ledger.Recorder) ([]models.AWSIAMUser, error) {
	users := []models.AWSIAMUser{}
	paginator := iamsvc.NewListUsersPaginator(client, &iamsvc.ListUsersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM users: %w", err)
		}
		for _, u := range page.Users {
			users = append(users, buildIAMUser(ctx, client, u, rec))
		}
	}
	return users, nil
}

func buildIAMUser(ctx context.Context, client iamAPIClient, u iamtypes.User, rec ledger.Recorder) models.AWSIAMUser {
	name := aws.ToString(u.UserName)
	user := models.AWSIAMUser{
		UserName:         name,
		UserID:           aws.ToString(u.UserId),
		ARN:              aws.ToString(u.Arn),
		CreateDate:       u.CreateDate,
		AttachedPolicies: []models.AWSAttachedPolicy{},
		InlinePolicies:   []string{},
	}

	if attached, err := userAttachedPolicies(ctx, client, name); err != nil {
		rec.Partial(models.ScopeGlobal, models.KindIdentity, "user/"+name, fmt.Errorf("list attached policies of user %s: %w", name, err))
	} else {
		user.AttachedPolicies = attached
	}

	if inline, err := userInlinePolicies(ctx, client, name); err != nil {
		rec.Partial(models.ScopeGlobal, models.KindIdentity, "user/"+name, fmt.Errorf("list inline policies of user %s: %w", name, err))
	} else {
		user.InlinePolicies = inline
	}
	return user
}

func userAttachedPolicies(ctx context.Context, client iamAPIClient, name string) ([]models.AWSAttachedPolicy, error) {
	policies := []models.AWSAttachedPolicy{}
	paginator := iamsvc.NewListAttachedUserPoliciesPaginator(client, &iamsvc.ListAttachedUserPoliciesInput{
		UserName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		policies = append(policies, toAttachedPolicies(page.AttachedPolicies)...)
	}
	return policies, nil
}

func userInlinePolicies(ctx context.Context, client iamAPIClient, name string) ([]string, error) {
	names := []string{}
	paginator := iamsvc.NewListUserPoliciesPaginator(client, &iamsvc.ListUserPoliciesInput{
		UserName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, page.PolicyNames...)
	}
	return names, nil
}

func collectIAMRoles(ctx context.Context, client iamAPIClient, rec ledger.Recorder) ([]models.AWSIAMRole, error) {
	roles := []models.AWSIAMRole{}
	paginator := iamsvc.NewListRolesPaginator(client, &iamsvc.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list IAM roles: %w", err)
		}
		for _, r := range page.Roles {
			roles = append(roles, buildIAMRole(ctx, client, r, rec))
		}
	}
	return roles, nil
}

func buildIAMRole(ctx context.Context, client iamAPIClient, r iamtypes.Role, rec ledger.Recorder) models.AWSIAMRole {
	name := aws.ToString(r.RoleName)
	role := models.AWSIAMRole{
		RoleName:         name,
		RoleID:           aws.ToString(r.RoleId),
		ARN:              aws.ToString(r.Arn),
		CreateDate:       r.CreateDate,
		AttachedPolicies: []models.AWSAttachedPolicy{},
		InlinePolicies:   []string{},
	}

	if attached, err := roleAttachedPolicies(ctx, client, name); err != nil {
		rec.Partial(models.ScopeGlobal, models.KindIdentity, "role/"+name, fmt.Errorf("list attached policies of role %s: %w", name, err))
	} else {
		role.AttachedPolicies = attached
	}

	if inline, err := roleInlinePolicies(ctx, client, name); err != nil {
		rec.Partial(models.ScopeGlobal, models.KindIdentity, "role/"+name, fmt.Errorf("list inline policies of role %s: %w", name, err))
	} else {
		role.InlinePolicies = inline
	}
	return role
}

func roleAttachedPolicies(ctx context.Context, client iamAPIClient, name string) ([]models.AWSAttachedPolicy, error) {
	policies := []models.AWSAttachedPolicy{}
	paginator := iamsvc.NewListAttachedRolePoliciesPaginator(client, &iamsvc.ListAttachedRolePoliciesInput{
		RoleName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		policies = append(policies, toAttachedPolicies(page.AttachedPolicies)...)
	}
	return policies, nil
}

func roleInlinePolicies(ctx context.Context, client iamAPIClient, name string) ([]string, error) {
	names := []string{}
	paginator := iamsvc.NewListRolePoliciesPaginator(client, &iamsvc.ListRolePoliciesInput{
		RoleName: aws.String(name),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, page.PolicyNames...)
	}
	return names, nil
}

func toAttachedPolicies(in []iamtypes.AttachedPolicy) []models.AWSAttachedPolicy {
	out := make([]models.AWSAttachedPolicy, 0, len(in))
	for _, p := range in {
		out = append(out, models.AWSAttachedPolicy{
			PolicyName: aws.ToString(p.PolicyName),
			PolicyARN:  aws.ToString(p.PolicyArn),
		})
	}
	return out
}
