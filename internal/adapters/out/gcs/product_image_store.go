package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"

	"storefront/internal/application/usecase"
)

// ProductImageStoreGCS stores product images in a GCS bucket.
//
// Layout (single bucket):
//   - bucket: <project>-product-images
//   - objectPath: products/<slug>/<fileName>
//
// Public access relies on bucket-level IAM ("allUsers: Storage Object Viewer"
// with uniform access), so uploads need no per-object ACL changes.
type ProductImageStoreGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewProductImageStoreGCS(client *storage.Client, bucket string) *ProductImageStoreGCS {
	return &ProductImageStoreGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

// Upload writes the object and returns its public URL.
func (s *ProductImageStoreGCS) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	if s == nil || s.Client == nil {
		return "", errors.New("product_image_store: storage client is nil")
	}
	bucket := strings.TrimSpace(s.Bucket)
	if bucket == "" {
		return "", errors.New("product_image_store: bucket is empty")
	}
	objectName = strings.TrimLeft(strings.TrimSpace(objectName), "/")
	if objectName == "" {
		return "", errors.New("product_image_store: object name is empty")
	}

	w := s.Client.Bucket(bucket).Object(objectName).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	w.CacheControl = "public, max-age=86400"

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("product_image_store: upload %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("product_image_store: upload %s: %w", objectName, err)
	}

	return s.publicURL(bucket, objectName), nil
}

func (s *ProductImageStoreGCS) publicURL(bucket, objectName string) string {
	base := strings.TrimRight(s.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	// Escape each path segment, keep the slashes.
	segs := strings.Split(objectName, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, strings.Join(segs, "/"))
}

var _ usecase.ImageStore = (*ProductImageStoreGCS)(nil)
