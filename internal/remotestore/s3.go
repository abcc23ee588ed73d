package remotestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/regsync/internal/common"
	"github.com/dmitrijs2005/regsync/internal/logging"
	"github.com/google/uuid"
)

type s3API interface {
	ListBuckets(ctx context.Context, in *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	GetBucketTagging(ctx context.Context, in *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	PutBucketTagging(ctx context.Context, in *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var (
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newBucketSuffix = func() string {
		return uuid.NewString()
	}
)

// Options configures the S3 client and the project tag applied to new
// buckets.
type Options struct {
	// BaseEndpoint points the client at MinIO/LocalStack when set.
	BaseEndpoint string
	UsePathStyle bool
	TagKey       string
	TagValue     string
}

type S3Store struct {
	api      s3API
	region   string
	tagKey   string
	tagValue string
	log      logging.Logger
}

func New(cfg aws.Config, opts Options, log logging.Logger) *S3Store {
	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &S3Store{
		api:      client,
		region:   cfg.Region,
		tagKey:   opts.TagKey,
		tagValue: opts.TagValue,
		log:      log,
	}
}

// FindBucketByPrefix returns the single bucket whose name starts with
// prefix. No match wraps common.ErrNotFound; more than one wraps
// common.ErrAmbiguousState.
func (s *S3Store) FindBucketByPrefix(ctx context.Context, prefix string) (string, error) {
	var matches []string
	in := &s3.ListBucketsInput{Prefix: aws.String(prefix)}

	for {
		out, err := s.api.ListBuckets(ctx, in)
		if err != nil {
			return "", classify(err, "list buckets")
		}
		for _, b := range out.Buckets {
			name := aws.ToString(b.Name)
			// some S3-compatible servers ignore the Prefix parameter
			if strings.HasPrefix(name, prefix) {
				matches = append(matches, name)
			}
		}
		if aws.ToString(out.ContinuationToken) == "" {
			break
		}
		in.ContinuationToken = out.ContinuationToken
	}

	switch len(matches) {
	case 0:
		s.log.Debug(ctx, "no bucket matches prefix", "prefix", prefix)
		return "", fmt.Errorf("bucket with prefix %q: %w", prefix, common.ErrNotFound)
	case 1:
		s.log.Debug(ctx, "bucket found", "prefix", prefix, "bucket", matches[0])
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %d buckets match prefix %q: %s",
			common.ErrAmbiguousState, len(matches), prefix, strings.Join(matches, ", "))
	}
}

// BucketExists reports whether name exists and is reachable.
func (s *S3Store) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := s.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err == nil {
		return true, nil
	}
	err = classify(err, "head bucket "+name)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// CreateBucket creates prefix-<uuid4> and tags it with the project tag. If
// tagging fails the bucket is removed again and the tagging error returned.
func (s *S3Store) CreateBucket(ctx context.Context, prefix string) (string, error) {
	name := prefix + "-" + newBucketSuffix()

	in := &s3.CreateBucketInput{Bucket: aws.String(name)}
	// us-east-1 rejects an explicit location constraint
	if s.region != "" && s.region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	if _, err := s.api.CreateBucket(ctx, in); err != nil {
		return "", classify(err, "create bucket "+name)
	}

	if err := s.putTags(ctx, name, nil); err != nil {
		if _, derr := s.api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(name)}); derr != nil {
			s.log.Warn(ctx, "failed to remove untagged bucket", "bucket", name, "error", derr)
		}
		return "", err
	}

	s.log.Info(ctx, "bucket created", "bucket", name, "region", s.region, "tag", s.tagKey+"="+s.tagValue)
	return name, nil
}

// EnsureTagged checks that bucket carries the project tag and puts it back,
// next to any other tags, when it is missing. A bucket tagged for another
// project wraps common.ErrAmbiguousState.
func (s *S3Store) EnsureTagged(ctx context.Context, bucket string) error {
	var tags []types.Tag
	out, err := s.api.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
	switch {
	case err == nil:
		tags = out.TagSet
	case hasCode(err, "NoSuchTagSet"):
	default:
		return classify(err, "get bucket tagging "+bucket)
	}

	for _, t := range tags {
		if aws.ToString(t.Key) != s.tagKey {
			continue
		}
		if aws.ToString(t.Value) == s.tagValue {
			return nil
		}
		return fmt.Errorf("%w: bucket %s is tagged %s=%s, want %s",
			common.ErrAmbiguousState, bucket, s.tagKey, aws.ToString(t.Value), s.tagValue)
	}

	s.log.Warn(ctx, "bucket is missing the project tag, re-applying", "bucket", bucket, "tag", s.tagKey+"="+s.tagValue)
	return s.putTags(ctx, bucket, tags)
}

// putTags writes the project tag together with existing.
func (s *S3Store) putTags(ctx context.Context, bucket string, existing []types.Tag) error {
	tagSet := append(existing, types.Tag{Key: aws.String(s.tagKey), Value: aws.String(s.tagValue)})
	_, err := s.api.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(bucket),
		Tagging: &types.Tagging{TagSet: tagSet},
	})
	if err != nil {
		return classify(err, "tag bucket "+bucket)
	}
	return nil
}

// ObjectExists reports whether key exists in bucket. Only a 404-class
// response means false.
func (s *S3Store) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	err = classify(err, fmt.Sprintf("head object %s/%s", bucket, key))
	if errors.Is(err, common.ErrNotFound) {
		s.log.Debug(ctx, "object absent", "bucket", bucket, "key", key)
		return false, nil
	}
	return false, err
}

func (s *S3Store) PutObject(ctx context.Context, bucket, key string, data []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return classify(err, fmt.Sprintf("put object %s/%s", bucket, key))
	}
	s.log.Info(ctx, "object uploaded", "bucket", bucket, "key", key, "size", len(data))
	return nil
}

func (s *S3Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get object %s/%s", bucket, key))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read object %s/%s: %v", common.ErrTransientStore, bucket, key, err)
	}
	s.log.Info(ctx, "object downloaded", "bucket", bucket, "key", key, "size", len(data))
	return data, nil
}

var notFoundCodes = map[string]bool{
	"NotFound":     true,
	"NoSuchKey":    true,
	"NoSuchBucket": true,
}

func hasCode(err error, code string) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == code
}

// classify maps an SDK error onto the common taxonomy.
func classify(err error, op string) error {
	var ae smithy.APIError
	if errors.As(err, &ae) && notFoundCodes[ae.ErrorCode()] {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	var re *smithyhttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrTransientStore, op, err)
}
