package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfnsvc "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectStacks pages through DescribeStacks for region. Deleted stacks are
// not returned by DescribeStacks, so no status filter is needed.
func collectStacks(ctx context.Context, client cfnAPIClient, region string) (*models.StackSet, error) {
	set := &models.StackSet{Stacks: []models.AWSStack{}}

	paginator := cfnsvc.NewDescribeStacksPaginator(client, &cfnsvc.DescribeStacksInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe stacks in %s: %w", region, err)
		}
		for _, st := range page.Stacks {
			set.Stacks = append(set.Stacks, toStack(st))
		}
	}
	return set, nil
}

func toStack(st cfntypes.Stack) models.AWSStack {
	return models.AWSStack{
		StackName:       aws.ToString(st.StackName),
		StackID:         aws.ToString(st.StackId),
		Status:          string(st.StackStatus),
		CreationTime:    st.CreationTime,
		LastUpdatedTime: st.LastUpdatedTime,
		Description:     aws.ToString(st.Description),
		Tags:            cfnTags(st.Tags),
	}
}
