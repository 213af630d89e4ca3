package providers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"CloudSentry/core"
	"CloudSentry/internal/credstore"
	"CloudSentry/internal/fetch"
	"CloudSentry/internal/logger"
	"CloudSentry/internal/retry"
)

// DefaultMaxFiles caps how many log objects a single fetch downloads
const DefaultMaxFiles = 50

// S3Client is the subset of the S3 API the provider uses. The concrete
// client satisfies it; tests substitute a fake.
type S3Client interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// CloudTrailProvider fetches AWS CloudTrail logs from an S3 bucket.
// CloudTrail delivers gzip-compressed JSON objects, each wrapping a
// "Records" array. On fetch failure the provider degrades to a local
// fallback archive so the caller never sees a hard error for a
// reachability problem.
type CloudTrailProvider struct {
	client       S3Client
	bucket       string
	prefix       string
	maxFiles     int
	workers      int
	fallbackPath string
	retryConfig  retry.Config
}

// CloudTrailOptions configures a CloudTrail provider
type CloudTrailOptions struct {
	Bucket   string
	Prefix   string // e.g. "AWSLogs/"
	Region   string
	MaxFiles int
	Workers  int // concurrent object downloads, defaults to the CPU count

	// FallbackPath is a local CSV archive served when S3 is unreachable.
	// Empty disables the fallback and makes fetch failures hard errors.
	FallbackPath string

	// CredentialProfile names a profile in the credential store. When
	// set and present, its static keys take precedence over the SDK's
	// default credential chain.
	CredentialProfile string

	Retry retry.Config
}

// NewCloudTrailProvider creates a provider backed by a real S3 client.
// Without a bucket the provider is fallback-only: it serves the local
// archive on every fetch and never touches AWS, so the tool runs out of
// the box with its bundled demo dataset.
func NewCloudTrailProvider(ctx context.Context, opts CloudTrailOptions, creds credstore.Store) (*CloudTrailProvider, error) {
	if opts.Bucket == "" {
		if opts.FallbackPath == "" {
			return nil, fmt.Errorf("cloudtrail provider requires a bucket name or a fallback archive")
		}
		return NewCloudTrailProviderWithClient(nil, opts), nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	if opts.CredentialProfile != "" && creds != nil {
		stored, err := creds.Load(opts.CredentialProfile)
		if err != nil {
			return nil, fmt.Errorf("failed to load credential profile %q: %w", opts.CredentialProfile, err)
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(stored.AccessKeyID, stored.SecretAccessKey, stored.SessionToken),
		))
		logger.Debug("Using stored credentials for profile %q", opts.CredentialProfile)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewCloudTrailProviderWithClient(s3.NewFromConfig(cfg), opts), nil
}

// NewCloudTrailProviderWithClient creates a provider with an injected S3
// client. Used directly by tests.
func NewCloudTrailProviderWithClient(client S3Client, opts CloudTrailOptions) *CloudTrailProvider {
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}

	retryConfig := opts.Retry
	if retryConfig.MaxAttempts <= 0 {
		retryConfig = retry.DefaultConfig
	}

	return &CloudTrailProvider{
		client:       client,
		bucket:       opts.Bucket,
		prefix:       opts.Prefix,
		maxFiles:     maxFiles,
		workers:      opts.Workers,
		fallbackPath: opts.FallbackPath,
		retryConfig:  retryConfig,
	}
}

// Name returns the provider identity
func (p *CloudTrailProvider) Name() string {
	return "aws"
}

// CacheKey returns the cache key for this provider's fetch
func (p *CloudTrailProvider) CacheKey() string {
	return "aws:" + p.bucket + ":" + p.prefix
}

// Fetch downloads and normalizes CloudTrail records from S3. When no
// bucket is configured, or S3 is unreachable or access is denied after
// retries, it serves the local fallback archive instead and reports the
// degradation on the result; only a total failure (fallback unavailable
// too) returns an error.
func (p *CloudTrailProvider) Fetch(ctx context.Context) (*FetchResult, error) {
	var err error
	if p.client == nil {
		err = fmt.Errorf("no S3 bucket configured")
	} else {
		var records core.Events
		var skipped int
		records, skipped, err = p.fetchFromS3(ctx)
		if err == nil {
			return &FetchResult{Records: records, Skipped: skipped}, nil
		}
	}

	logger.Warn("AWS access not available: %v", err)

	if p.fallbackPath == "" {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	logger.Warn("Loading local demo logs from %s", p.fallbackPath)
	result, fallbackErr := LoadCSVFile(p.fallbackPath, DefaultUserDemo)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: %v (fallback also failed: %v)", ErrFetchFailed, err, fallbackErr)
	}

	result.Fallback = true
	result.FallbackReason = err.Error()
	return result, nil
}

func (p *CloudTrailProvider) fetchFromS3(ctx context.Context) (core.Events, int, error) {
	keys, err := p.listLogObjects(ctx)
	if err != nil {
		return nil, 0, err
	}

	records, skipped, err := fetch.NewPool(p.workers).Fetch(ctx, keys, p.fetchLogObject)
	if err != nil {
		return nil, 0, err
	}

	if skipped > 0 {
		logger.Warn("Skipped %d unparseable CloudTrail records", skipped)
	}
	logger.Info("Fetched %d CloudTrail records from %d objects in s3://%s", len(records), len(keys), p.bucket)

	return records, skipped, nil
}

// listLogObjects lists the CloudTrail log objects in the bucket, keeping
// only gzip-compressed logs and capping the count at maxFiles
func (p *CloudTrailProvider) listLogObjects(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
	}
	if p.prefix != "" {
		input.Prefix = aws.String(p.prefix)
	}

	keys := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	for paginator.HasMorePages() {
		var page *s3.ListObjectsV2Output
		err := retry.DoWithConfig(ctx, "list CloudTrail objects", p.retryConfig, func() error {
			var listErr error
			page, listErr = paginator.NextPage(ctx)
			return listErr
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in s3://%s: %w", p.bucket, err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".gz") {
				continue
			}
			keys = append(keys, key)
			if len(keys) >= p.maxFiles {
				logger.Debug("Reached max-files cap of %d objects", p.maxFiles)
				return keys, nil
			}
		}
	}

	return keys, nil
}

// fetchLogObject downloads one log object and normalizes its records
func (p *CloudTrailProvider) fetchLogObject(ctx context.Context, key string) (core.Events, int, error) {
	var obj *s3.GetObjectOutput
	err := retry.DoWithConfig(ctx, "get CloudTrail object", p.retryConfig, func() error {
		var getErr error
		obj, getErr = p.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(p.bucket),
			Key:    aws.String(key),
		})
		return getErr
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get s3://%s/%s: %w", p.bucket, key, err)
	}
	defer obj.Body.Close()

	gz, err := gzip.NewReader(obj.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decompress s3://%s/%s: %w", p.bucket, key, err)
	}
	defer gz.Close()

	// CloudTrail wraps events in a top-level Records array
	var wrapper struct {
		Records []map[string]interface{} `json:"Records"`
	}
	if err := json.NewDecoder(gz).Decode(&wrapper); err != nil {
		return nil, 0, fmt.Errorf("failed to decode s3://%s/%s: %w", p.bucket, key, err)
	}

	records := make(core.Events, 0, len(wrapper.Records))
	skipped := 0
	for _, raw := range wrapper.Records {
		record, err := NormalizeCloudTrailRecord(raw, DefaultUserUnknown)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}

	logger.Debug("Parsed %s (%d records, %d skipped)", key, len(records), skipped)
	return records, skipped, nil
}
