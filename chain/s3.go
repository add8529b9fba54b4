package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

// Blobs above this size go through the multipart upload manager
const minMultipartSize = 12 << 20

// S3Store keeps blobs in an S3 bucket under their content address
type S3Store struct {
	c      *s3.Client
	bucket *string
}

func NewS3() (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("aws.access_key"),
			viper.GetString("aws.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("aws.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("aws.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Store{
		c:      client,
		bucket: bucket,
	}, nil
}

func (s *S3Store) Put(ctx context.Context, data []byte) (string, error) {
	cid := ComputeCid(data)

	input := &s3.PutObjectInput{
		Bucket:        s.bucket,
		Key:           aws.String(cid),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
		// Content addressed, so a blob never changes under its key
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	}

	var err error
	if len(data) > minMultipartSize {
		u := manager.NewUploader(s.c, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})
		_, err = u.Upload(ctx, input)
	} else {
		_, err = s.c.PutObject(ctx, input)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload blob to S3, %w", err)
	}

	return cid, nil
}

func (s *S3Store) Get(ctx context.Context, cid string) ([]byte, error) {
	out, err := s.c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: s.bucket,
		Key:    aws.String(cid),
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to fetch blob from S3, %w", err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

func (s *S3Store) Status(ctx context.Context) (*Status, error) {
	st := &Status{Backend: "s3"}

	if _, err := s.c.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: s.bucket}); err != nil {
		return st, nil
	}
	st.Connected = true

	p := s3.NewListObjectsV2Paginator(s.c, &s3.ListObjectsV2Input{Bucket: s.bucket})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket, %w", err)
		}

		st.Blobs += int64(len(page.Contents))
		for _, obj := range page.Contents {
			st.Bytes += aws.ToInt64(obj.Size)
		}
	}

	return st, nil
}
