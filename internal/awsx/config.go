// Package awsx builds the shared aws.Config used by the S3 and Secrets
// Manager clients.
package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// Options overrides the default AWS credential chain. Empty fields keep
// the SDK defaults.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string
}

// LoadConfig resolves region and credentials. Static credentials are used
// only when both AccessKey and SecretKey are set, which is the usual setup
// for MinIO or LocalStack.
func LoadConfig(ctx context.Context, o Options) (aws.Config, error) {
	var optFns []func(*config.LoadOptions) error
	if o.Region != "" {
		optFns = append(optFns, config.WithRegion(o.Region))
	}
	if o.AccessKey != "" && o.SecretKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, ""),
		))
	}
	return loadDefaultAWSConfig(ctx, optFns...)
}
