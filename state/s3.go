package state

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// ObjectGetter is the subset of *s3.Client the mirror reads with
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectUploader is the subset of *manager.Uploader the mirror writes with
type ObjectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Mirror copies the JSON state files to and from a bucket, so runs on
// ephemeral hosts (CI runners, containers) keep their state
type S3Mirror struct {
	client   ObjectGetter
	uploader ObjectUploader
	bucket   string
	prefix   string
	logger   *zap.SugaredLogger
}

// NewS3Mirror builds a mirror from configuration. Static credentials are
// used when configured; otherwise the default AWS credential chain applies.
func NewS3Mirror(ctx context.Context, cfg am.S3Config, log *zap.SugaredLogger) (*S3Mirror, error) {
	opts := []func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3MirrorWithClient(client, manager.NewUploader(client), cfg.Bucket, cfg.Prefix, log), nil
}

// NewS3MirrorWithClient builds a mirror over explicit clients
func NewS3MirrorWithClient(client ObjectGetter, uploader ObjectUploader, bucket, prefix string, log *zap.SugaredLogger) *S3Mirror {
	return &S3Mirror{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		logger:   logger.OrNop(log).With(logger.FieldBackend, "s3"),
	}
}

// Key returns the object key for a local state file
func (m *S3Mirror) Key(localPath string) string {
	return path.Join(m.prefix, filepath.Base(localPath))
}

// Restore downloads each file that exists in the bucket over its local
// copy. Missing objects are skipped; other failures are collected and the
// remaining files still restored.
func (m *S3Mirror) Restore(ctx context.Context, paths []string) error {
	var errs error
	restored := 0
	for _, p := range paths {
		key := m.Key(p)
		out, err := m.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(m.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var missing *types.NoSuchKey
			if errors.As(err, &missing) {
				m.logger.Debugw("no remote state", "key", key)
				continue
			}
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "get s3://%s/%s", m.bucket, key))
			continue
		}

		data, err := io.ReadAll(out.Body)
		out.Body.Close()
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "read s3://%s/%s", m.bucket, key))
			continue
		}
		if err := writeFileAtomic(p, data); err != nil {
			errs = errors.CombineErrors(errs, err)
			continue
		}
		restored++
	}
	m.logger.Infow("restored state from s3", "bucket", m.bucket, logger.FieldCount, restored)
	return errs
}

// Upload pushes each local file that exists to the bucket
func (m *S3Mirror) Upload(ctx context.Context, paths []string) error {
	var errs error
	uploaded := 0
	for _, p := range paths {
		f, err := os.Open(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "open %s", p))
			continue
		}

		key := m.Key(p)
		_, err = m.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.bucket),
			Key:         aws.String(key),
			Body:        f,
			ContentType: aws.String("application/json"),
		})
		f.Close()
		if err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "upload s3://%s/%s", m.bucket, key))
			continue
		}
		uploaded++
	}
	m.logger.Infow("uploaded state to s3", "bucket", m.bucket, logger.FieldCount, uploaded)
	return errs
}
