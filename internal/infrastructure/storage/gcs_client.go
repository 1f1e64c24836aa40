package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"emergencyreport/internal/domain/service"
)

const gcsPublicHost = "https://storage.googleapis.com/"

type CloudStorageClient struct {
	client     *storage.Client
	bucketName string
	folder     string
}

var _ service.ImageStore = (*CloudStorageClient)(nil)

func NewCloudStorageClient(ctx context.Context, bucketName, folder, credentialsPath string) (*CloudStorageClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &CloudStorageClient{
		client:     client,
		bucketName: bucketName,
		folder:     strings.Trim(folder, "/"),
	}, nil
}

func (c *CloudStorageClient) objectName(name string) string {
	if c.folder == "" {
		return name
	}
	return c.folder + "/" + name
}

func (c *CloudStorageClient) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	objectName := c.objectName(name)

	obj := c.client.Bucket(c.bucketName).Object(objectName)
	wc := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "public, max-age=86400" // 1 day caching

	if _, err := io.Copy(wc, bytes.NewReader(data)); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to copy image to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}

	return gcsPublicHost + c.bucketName + "/" + objectName, nil
}

func (c *CloudStorageClient) Remove(ctx context.Context, ref string) error {
	// Expected URL format: https://storage.googleapis.com/bucket-name/object-path
	if !strings.HasPrefix(ref, gcsPublicHost) {
		return fmt.Errorf("invalid GCS URL format")
	}

	parts := strings.SplitN(ref[len(gcsPublicHost):], "/", 2)
	if len(parts) != 2 || parts[0] != c.bucketName {
		return fmt.Errorf("invalid GCS URL format or bucket mismatch")
	}

	if err := c.client.Bucket(c.bucketName).Object(parts[1]).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete image: %v", err)
	}

	return nil
}

func (c *CloudStorageClient) Close() error {
	return c.client.Close()
}
