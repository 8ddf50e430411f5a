package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Product images live in a Cloudflare R2 bucket (S3-compatible). The DB stores
// only the object key; clients fetch a short-lived presigned URL.

var (
	r2Once   sync.Once
	r2Client *s3.Client
	r2Bucket string
	r2Err    error
)

// r2 lazily builds the shared R2 client from env. The error sticks so every
// caller sees the same misconfiguration.
func r2() (*s3.Client, string, error) {
	r2Once.Do(func() {
		accountID := os.Getenv("R2_ACCOUNT_ID")
		accessKey := os.Getenv("R2_ACCESS_KEY_ID")
		secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")
		r2Bucket = os.Getenv("R2_BUCKET_NAME")
		if accountID == "" || accessKey == "" || secretKey == "" || r2Bucket == "" {
			r2Err = fmt.Errorf("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME must be set")
			return
		}

		cfg, err := config.LoadDefaultConfig(context.TODO(),
			config.WithRegion("auto"), // required by the SDK, R2 ignores it
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
			),
		)
		if err != nil {
			r2Err = fmt.Errorf("load R2 config: %w", err)
			return
		}

		endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
		r2Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	})
	return r2Client, r2Bucket, r2Err
}

// UploadToS3 stores the file in the R2 bucket under the given object key. The
// content type is inferred from the key's extension.
func UploadToS3(objectName string, file io.Reader, fileSize int64) error {
	client, bucket, err := r2()
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(path.Ext(objectName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(objectName),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("R2 upload failed: %w", err)
	}
	return nil
}

// GenerateSignedURL returns a presigned GET URL for the object, valid for
// expirySeconds.
func GenerateSignedURL(objectName string, expirySeconds int64) (string, error) {
	client, bucket, err := r2()
	if err != nil {
		return "", err
	}

	presigned, err := s3.NewPresignClient(client).PresignGetObject(context.TODO(),
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(objectName),
		},
		func(po *s3.PresignOptions) {
			po.Expires = time.Duration(expirySeconds) * time.Second
		},
	)
	if err != nil {
		return "", fmt.Errorf("presign R2 URL: %w", err)
	}
	return presigned.URL, nil
}

// DeleteFromS3 removes the object from the R2 bucket.
func DeleteFromS3(objectName string) error {
	client, bucket, err := r2()
	if err != nil {
		return err
	}

	_, err = client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("R2 delete failed: %w", err)
	}
	return nil
}
