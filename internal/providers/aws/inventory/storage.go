package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/awsinv/internal/ledger"
	"github.com/pankaj-dahiya-devops/awsinv/internal/models"
)

// S3 reports the legacy location constraints "" and "EU" for buckets created
// in us-east-1 and eu-west-1.
const (
	s3DefaultLocation  = "us-east-1"
	s3LegacyEULocation = "EU"
	s3LegacyEURegion   = "eu-west-1"
	s3NoTagSetCode     = "NoSuchTagSet"
)

// collectBuckets lists all S3 buckets in the account and resolves each
// bucket's home region and tags.
//
// ListBuckets failing fails the kind. A failed location lookup keeps the
// bucket with Region set to models.UnknownRegion; a failed tag lookup keeps it
// with an empty tag map. Both record a partial error scoped to the bucket.
func collectBuckets(ctx context.Context, client s3APIClient, rec ledger.Recorder) ([]models.AWSS3Bucket, error) {
	buckets := []models.AWSS3Bucket{}

	paginator := s3svc.NewListBucketsPaginator(client, &s3svc.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list S3 buckets: %w", err)
		}
		for _, b := range page.Buckets {
			name := aws.ToString(b.Name)
			bucket := models.AWSS3Bucket{
				Name:         name,
				CreationDate: b.CreationDate,
				Region:       models.UnknownRegion,
				Tags:         map[string]string{},
			}

			if region, err := bucketRegion(ctx, client, name); err != nil {
				rec.Partial(models.ScopeGlobal, models.KindStorage, name, fmt.Errorf("get location of bucket %s: %w", name, err))
			} else {
				bucket.Region = region
			}

			if tags, err := bucketTags(ctx, client, name, bucket.Region); err != nil {
				rec.Partial(models.ScopeGlobal, models.KindStorage, name, fmt.Errorf("get tags of bucket %s: %w", name, err))
			} else {
				bucket.Tags = tags
			}

			buckets = append(buckets, bucket)
		}
	}
	return buckets, nil
}

// bucketRegion returns the region a bucket lives in, translating the legacy
// location constraints.
func bucketRegion(ctx context.Context, client s3APIClient, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := client.GetBucketLocation(ctx, &s3svc.GetBucketLocationInput{Bucket: aws.String(name)})
	if err != nil {
		return "", err
	}
	return normalizeBucketLocation(string(out.LocationConstraint)), nil
}

func normalizeBucketLocation(constraint string) string {
	switch constraint {
	case "":
		return s3DefaultLocation
	case s3LegacyEULocation:
		return s3LegacyEURegion
	default:
		return constraint
	}
}

// bucketTags returns the bucket's tags. A bucket with no tag set is not an
// error: S3 answers NoSuchTagSet and the result is an empty map.
//
// The request is sent to region when it is known. The SDK does not follow
// S3's cross-region redirect, so a bucket outside the client's region would
// otherwise fail with PermanentRedirect.
func bucketTags(ctx context.Context, client s3APIClient, name, region string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var optFns []func(*s3svc.Options)
	if region != "" && region != models.UnknownRegion {
		optFns = append(optFns, func(o *s3svc.Options) { o.Region = region })
	}
	out, err := client.GetBucketTagging(ctx, &s3svc.GetBucketTaggingInput{Bucket: aws.String(name)}, optFns...)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == s3NoTagSetCode {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return s3Tags(out.TagSet), nil
}
