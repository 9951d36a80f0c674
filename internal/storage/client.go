package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client stores uploaded drawings and reference images in a MinIO bucket.
type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
}

// Options configures the storage client.
type Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// New creates a storage client and ensures the bucket exists.
// Bucket creation is best-effort; upload calls retry it on demand.
func New(opts Options) (*Client, error) {
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: create client: %w", err)
	}

	c := &Client{mc: mc, bucket: opts.Bucket, publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = c.ensureBucket(ctx)

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return err
		}
	}
	return nil
}

// UploadBytes stores raw image bytes and returns the public URL.
func (c *Client) UploadBytes(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if err := c.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("storage: bucket unavailable: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	object := uuid.NewString()
	if ext := extension(filename, contentType); ext != "" {
		object += ext
	}

	_, err := c.mc.PutObject(ctx, c.bucket, object, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("storage: upload failed: %w", err)
	}
	return c.publicBaseURL + "/" + c.bucket + "/" + object, nil
}

// UploadDataURL decodes a base64 data URL and stores the payload.
func (c *Client) UploadDataURL(ctx context.Context, dataURL string) (string, error) {
	data, contentType, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	return c.UploadBytes(ctx, data, "", contentType)
}

// DecodeDataURL splits a "data:<mime>;base64,<payload>" string into
// bytes and mime type. Raw base64 without the prefix is accepted too.
func DecodeDataURL(dataURL string) ([]byte, string, error) {
	payload := dataURL
	contentType := ""
	if strings.HasPrefix(dataURL, "data:") {
		idx := strings.Index(dataURL, ",")
		if idx < 0 {
			return nil, "", errors.New("storage: malformed data URL")
		}
		meta := dataURL[len("data:"):idx]
		payload = dataURL[idx+1:]
		meta = strings.TrimSuffix(meta, ";base64")
		contentType = meta
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("storage: decode base64: %w", err)
	}
	return data, contentType, nil
}

func extension(filename, contentType string) string {
	if idx := strings.LastIndex(filename, "."); idx >= 0 {
		return filename[idx:]
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ""
}
