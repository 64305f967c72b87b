package database

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaStore uploads post and story media to object storage and
// returns a public URL for the stored object.
type MediaStore struct {
	client *minio.Client
	bucket string
}

func NewMediaStore(endpoint, accessKey, secretKey, bucket string) (*MediaStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	slog.Info("minio connection established", "bucket", bucket)
	return &MediaStore{client: client, bucket: bucket}, nil
}

// Upload stores the file under the given prefix ("posts", "stories")
// and returns its URL and detected media type.
func (m *MediaStore) Upload(ctx context.Context, prefix string, file *multipart.FileHeader) (url, mediaType string, err error) {
	src, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	mediaType = "image"
	if strings.HasPrefix(contentType, "video/") {
		mediaType = "video"
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), path.Ext(file.Filename))
	_, err = m.client.PutObject(ctx, m.bucket, objectName, src, file.Size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	url = fmt.Sprintf("http://%s/%s/%s", m.client.EndpointURL().Host, m.bucket, objectName)
	return url, mediaType, nil
}
