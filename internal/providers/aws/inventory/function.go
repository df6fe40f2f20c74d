package inventory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// collectFunctions pages through every Lambda function in region and looks
// up each function's tags. A failed tag lookup keeps the function with an
// empty tag map and records a partial error for it.
func collectFunctions(ctx context.Context, client lambdaAPIClient, region string, rec ledger.Recorder) (*models.FunctionSet, error) {
	set := &models.FunctionSet{Functions: []models.AWSLambdaFunction{}}

	paginator := lambdasvc.NewListFunctionsPaginator(client, &lambdasvc.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list functions in %s: %w", region, err)
		}
		for _, fn := range page.Functions {
			f := toLambdaFunction(fn)
			tags, err := functionTags(ctx, client, f.FunctionARN)
			if err != nil {
				rec.Partial(region, models.KindFunction, f.FunctionName, fmt.Errorf("list tags of %s: %w", f.FunctionName, err))
			} else {
				f.Tags = tags
			}
			set.Functions = append(set.Functions, f)
		}
	}
	return set, nil
}

func toLambdaFunction(fn lambdatypes.FunctionConfiguration) models.AWSLambdaFunction {
	return models.AWSLambdaFunction{
		FunctionName: aws.ToString(fn.FunctionName),
		FunctionARN:  aws.ToString(fn.FunctionArn),
		Runtime:      string(fn.Runtime),
		Handler:      aws.ToString(fn.Handler),
		LastModified: aws.ToString(fn.LastModified),
		Role:         aws.ToString(fn.Role),
		TimeoutSec:   aws.ToInt32(fn.Timeout),
		MemoryMB:     aws.ToInt32(fn.MemorySize),
		Tags:         map[string]string{},
	}
}

func functionTags(ctx context.Context, client lambdaAPIClient, arn string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if arn == "" {
		return map[string]string{}, nil
	}
	out, err := client.ListTags(ctx, &lambdasvc.ListTagsInput{Resource: aws.String(arn)})
	if err != nil {
		return nil, err
	}
	return copyTags(out.Tags), nil
}
