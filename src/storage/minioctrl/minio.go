package minioctrl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"aipod/src/log"
)

const PodcastsBucket = "podcasts"

var contentTypes = map[string]string{
	"mp3": "audio/mpeg",
	"wav": "audio/wav",
	"png": "image/png",
	"jpg": "image/jpeg",
}

type MinioService struct {
	client *minio.Client
	bucket string
}

func NewMinioService(endpoint, accessKeyID, secretAccessKey string, useSSL bool) (*MinioService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %v", err)
	}

	return &MinioService{
		client: client,
		bucket: PodcastsBucket,
	}, nil
}

func (s *MinioService) EnsureBucketExists(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
	}

	return nil
}

// SaveAudio stores the encoded episode under a per-user, per-podcast key.
// The key is deterministic so a retried job overwrites its own output.
func (s *MinioService) SaveAudio(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error) {
	objectName := fmt.Sprintf("user_%d/%s/audio.%s", ownerID, podcastID, format)
	if err := s.putObject(ctx, objectName, data, format); err != nil {
		return "", err
	}
	return s.bucket + "/" + objectName, nil
}

func (s *MinioService) SaveThumbnail(ctx context.Context, data []byte, podcastID string, ownerID int64, format string) (string, error) {
	objectName := fmt.Sprintf("user_%d/%s/thumbnail.%s", ownerID, podcastID, format)
	if err := s.putObject(ctx, objectName, data, format); err != nil {
		return "", err
	}
	return s.bucket + "/" + objectName, nil
}

func (s *MinioService) putObject(ctx context.Context, objectName string, data []byte, format string) error {
	contentType := contentTypes[format]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	reader := bytes.NewReader(data)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %v", err)
	}

	return nil
}

func (s *MinioService) GetObject(ctx context.Context, ref string) ([]byte, error) {
	bucket, objectName := splitRef(ref)
	if bucket == "" {
		return nil, fmt.Errorf("invalid artifact reference: %s", ref)
	}

	obj, err := s.client.GetObject(ctx, bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %v", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object data: %v", err)
	}

	return data, nil
}

func (s *MinioService) Delete(ctx context.Context, ref string) bool {
	bucket, objectName := splitRef(ref)
	if bucket == "" {
		log.Info("skipping delete of invalid artifact reference", "ref", ref)
		return false
	}

	err := s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		log.Error(err, "failed to delete artifact", "ref", ref)
		return false
	}

	return true
}

// splitRef parses a "bucket/object-name" artifact reference.
func splitRef(ref string) (bucket, objectName string) {
	parts := strings.SplitN(ref, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ""
	}
	return parts[0], parts[1]
}
