package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioService is the object store adapter: flat keys in a single bucket,
// with prefix listing standing in for directories.
type MinioService struct {
	Client     *minio.Client
	BucketName string
}

var minioInstance *MinioService

func InitializeMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// Create bucket if it doesn't exist
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	minioInstance = &MinioService{
		Client:     client,
		BucketName: bucket,
	}

	log.Println("Connected to MinIO successfully")
	return nil
}

func GetMinioService() *MinioService {
	return minioInstance
}

// CheckConnection Add this method for health checks
func (m *MinioService) CheckConnection() error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("minio service not initialized")
	}
	_, err := m.Client.BucketExists(context.Background(), m.BucketName)
	return err
}

func (m *MinioService) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.BucketName, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *MinioService) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := m.Client.GetObject(ctx, m.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// GetObject is lazy; Stat forces the first round trip so a missing
	// object surfaces here instead of mid-stream.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, err
	}
	return obj, nil
}

func (m *MinioService) Delete(ctx context.Context, key string) error {
	return m.Client.RemoveObject(ctx, m.BucketName, key, minio.RemoveObjectOptions{})
}

func (m *MinioService) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range m.Client.ListObjects(ctx, m.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key != "" {
			keys = append(keys, obj.Key)
		}
	}
	return keys, nil
}

// ObjectSummary is one row of the admin bucket browser.
type ObjectSummary struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// BrowseByPrefix returns the raw bucket view under a prefix, for inspecting
// orphaned objects the metadata no longer references.
func (m *MinioService) BrowseByPrefix(ctx context.Context, prefix string) ([]ObjectSummary, error) {
	objects := []ObjectSummary{}
	for obj := range m.Client.ListObjects(ctx, m.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == "" {
			continue
		}
		objects = append(objects, ObjectSummary{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return objects, nil
}

// DeleteByPrefix removes every object under prefix. Used for recursive
// folder deletion and full-namespace purges.
func (m *MinioService) DeleteByPrefix(ctx context.Context, prefix string) error {
	log.Printf("[MinIO] Starting deletion for prefix: %s (bucket: %s)", prefix, m.BucketName)

	objectsCh := m.Client.ListObjects(ctx, m.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	errorCh := m.Client.RemoveObjects(ctx, m.BucketName, objectsCh, minio.RemoveObjectsOptions{})

	var firstErr error
	for removeErr := range errorCh {
		if removeErr.Err != nil {
			log.Printf("[MinIO] Failed to delete object %s: %v", removeErr.ObjectName, removeErr.Err)
			if firstErr == nil {
				firstErr = removeErr.Err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}

	log.Printf("[MinIO] Deleted objects under prefix %s", prefix)
	return nil
}
