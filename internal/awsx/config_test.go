package awsx

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubLoader(t *testing.T, fn func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error)) {
	t.Helper()
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = fn
}

func applyOptions(t *testing.T, optFns []func(*awsconfig.LoadOptions) error) awsconfig.LoadOptions {
	t.Helper()
	var lo awsconfig.LoadOptions
	for _, fn := range optFns {
		require.NoError(t, fn(&lo))
	}
	return lo
}

func TestLoadConfig_StaticCredentials(t *testing.T) {
	var lo awsconfig.LoadOptions
	stubLoader(t, func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		lo = applyOptions(t, optFns)
		return aws.Config{Region: lo.Region}, nil
	})

	cfg, err := LoadConfig(context.Background(), Options{Region: "eu-west-1", AccessKey: "minio", SecretKey: "minio123"})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, lo.Credentials)

	creds, err := lo.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minio", creds.AccessKeyID)
	assert.Equal(t, "minio123", creds.SecretAccessKey)
}

func TestLoadConfig_DefaultChain(t *testing.T) {
	var calls int
	stubLoader(t, func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		calls++
		lo := applyOptions(t, optFns)
		assert.Empty(t, lo.Region)
		assert.Nil(t, lo.Credentials)
		return aws.Config{}, nil
	})

	// a lone access key is not enough for static credentials
	_, err := LoadConfig(context.Background(), Options{AccessKey: "only-id"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLoadConfig_Error(t *testing.T) {
	stubLoader(t, func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	})

	_, err := LoadConfig(context.Background(), Options{})
	require.EqualError(t, err, "load-fail")
}
