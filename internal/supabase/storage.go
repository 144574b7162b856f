package supabase

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	storage "github.com/supabase-community/storage-go"

	"design-order-backend/internal/models"
)

const (
	DefaultReferencesBucket   = "order-references"
	DefaultDeliverablesBucket = "order-deliverables"
)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type StorageClient struct {
	client             *storage.Client
	referencesBucket   string
	deliverablesBucket string
	baseURL            string
	now                func() time.Time
}

func NewStorageClient(supabaseURL, serviceRoleKey, referencesBucket, deliverablesBucket string) *StorageClient {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &StorageClient{
		client:             storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		referencesBucket:   referencesBucket,
		deliverablesBucket: deliverablesBucket,
		baseURL:            baseURL,
		now:                time.Now,
	}
}

// UploadReference stores a customer reference file under the draft it came
// from and returns its public URL.
func (s *StorageClient) UploadReference(ctx context.Context, draftID string, blob models.FileBlob) (models.FileMetadata, error) {
	path := fmt.Sprintf("drafts/%s/%s", draftID, s.objectName(blob.Name))
	if err := s.upload(ctx, s.referencesBucket, path, blob.Type, blob.Data); err != nil {
		return models.FileMetadata{}, err
	}
	return models.FileMetadata{
		Name: blob.Name,
		URL:  s.PublicURL(s.referencesBucket, path),
		Size: blob.Size,
		Type: blob.Type,
	}, nil
}

// UploadDeliverable stores a finished design in the private deliverables
// bucket. The returned metadata carries the object path, not a URL; use
// SignedURL to hand it out.
func (s *StorageClient) UploadDeliverable(ctx context.Context, orderID uuid.UUID, blob models.FileBlob) (models.FileMetadata, error) {
	path := fmt.Sprintf("orders/%s/%s", orderID, s.objectName(blob.Name))
	if err := s.upload(ctx, s.deliverablesBucket, path, blob.Type, blob.Data); err != nil {
		return models.FileMetadata{}, err
	}
	return models.FileMetadata{Name: blob.Name, URL: path, Size: blob.Size, Type: blob.Type}, nil
}

// SignedURL returns a time-limited download link for a deliverable.
func (s *StorageClient) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.CreateSignedUrl(s.deliverablesBucket, path, int(expiresIn.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	if strings.HasPrefix(resp.SignedURL, "/") {
		return s.baseURL + "/storage/v1" + resp.SignedURL, nil
	}
	return resp.SignedURL, nil
}

func (s *StorageClient) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, bucket, path)
}

func (s *StorageClient) upload(ctx context.Context, bucket, path, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cacheControl := "3600"
	upsert := false
	_, err := s.client.UploadFile(bucket, path, bytes.NewReader(data), storage.FileOptions{
		CacheControl: &cacheControl,
		ContentType:  &contentType,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to %s: %w", path, bucket, err)
	}
	return nil
}

// objectName is unique even for same-named files uploaded in the same
// millisecond.
func (s *StorageClient) objectName(name string) string {
	return fmt.Sprintf("%d-%s-%s", s.now().UnixMilli(), uuid.NewString()[:8], SanitizeFileName(name))
}

// SanitizeFileName replaces every character outside [a-zA-Z0-9.-] with an
// underscore.
func SanitizeFileName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}
