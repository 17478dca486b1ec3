package source

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Source reads a delimited export stored as an object in an S3-compatible bucket
type S3Source struct {
	Bucket    string
	Object    string
	Delimiter rune
	client    *minio.Client
}

// S3Config holds the connection settings for an S3-compatible endpoint
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// NewS3Client creates a minio client for the endpoint
func NewS3Client(cfg S3Config) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return client, nil
}

// NewS3Source creates an object source using an existing client
func NewS3Source(client *minio.Client, bucket, object string) *S3Source {
	return &S3Source{Bucket: bucket, Object: object, Delimiter: ',', client: client}
}

func (s *S3Source) Name() string {
	return "s3://" + s.Bucket + "/" + s.Object
}

func (s *S3Source) fetch(ctx context.Context) (*frame, error) {
	if err := ctxErr(ctx, s.Name()); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.Bucket, s.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("s3 get object: %w", err))
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces missing buckets/keys and connection errors
	if _, err := obj.Stat(); err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "NoSuchKey", "NoSuchBucket", "AccessDenied", "":
			return nil, unavailable(s.Name(), err)
		}
		return nil, loadFailure(s.Name(), err)
	}

	f, err := readCSVFrame(obj, s.Delimiter)
	if err != nil {
		return nil, loadFailure(s.Name(), err)
	}
	return f, nil
}
