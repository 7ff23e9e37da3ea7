package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var Client *minio.Client
var BucketName string

func Init() error {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
	}

	BucketName = os.Getenv("MINIO_BUCKET")
	if BucketName == "" {
		BucketName = "energy-reports"
	}

	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	var err error
	Client, err = minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := Client.BucketExists(ctx, BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", BucketName)
	}

	return nil
}

// ObjectKey builds the storage key for a report artifact.
// Path format: {user_id}/YYYY/MM/{report_id}/{filename}
func ObjectKey(userID, reportID, filename string, t time.Time) string {
	return fmt.Sprintf("%s/%d/%02d/%s/%s", userID, t.Year(), t.Month(), reportID, filename)
}

// UploadArtifact uploads a source invoice or rendered report artifact and
// returns the stored object path.
func UploadArtifact(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := Client.PutObject(ctx, BucketName, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return fmt.Sprintf("%s/%s", BucketName, objectName), nil
}

// GetPresignedURL generates a presigned download URL for an artifact.
func GetPresignedURL(ctx context.Context, objectPath string) (string, error) {
	url, err := Client.PresignedGetObject(ctx, BucketName, trimBucket(objectPath), 24*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// DeleteArtifact removes an artifact from storage.
func DeleteArtifact(ctx context.Context, objectPath string) error {
	return Client.RemoveObject(ctx, BucketName, trimBucket(objectPath), minio.RemoveObjectOptions{})
}

// trimBucket removes the bucket prefix stored in the database path.
func trimBucket(objectPath string) string {
	if len(objectPath) > len(BucketName)+1 && objectPath[:len(BucketName)+1] == BucketName+"/" {
		return objectPath[len(BucketName)+1:]
	}
	return objectPath
}

// GetFileExtension maps a content type to a file extension.
func GetFileExtension(contentType string) string {
	switch contentType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	default:
		return ".bin"
	}
}
