// Package storage keeps payment receipts in S3-compatible object storage.
// Uploads and downloads go straight between the client and the bucket
// through presigned URLs; the API only hands those out.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned when object storage is not configured.
var ErrDisabled = errors.New("receipt storage is not configured")

// PresignedURL contains the URL and metadata for a presigned upload/download operation.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReceiptStorage is the object store used for confirmation receipts.
type ReceiptStorage interface {
	// GenerateUploadURL creates a presigned PUT URL under folder. The file
	// key is made unique so retries never overwrite an earlier receipt.
	GenerateUploadURL(ctx context.Context, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	// GenerateDownloadURL creates a presigned GET URL for an existing key.
	GenerateDownloadURL(ctx context.Context, fileKey string) (*PresignedURL, error)
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketReceipts() string
	IsMinIOEnabled() bool
}

// Disabled is the ReceiptStorage used when MinIO is not configured.
type Disabled struct{}

func (Disabled) GenerateUploadURL(context.Context, string, string, string, int64) (*PresignedURL, error) {
	return nil, ErrDisabled
}

func (Disabled) GenerateDownloadURL(context.Context, string) (*PresignedURL, error) {
	return nil, ErrDisabled
}

var (
	_ ReceiptStorage = (*MinIOService)(nil)
	_ ReceiptStorage = Disabled{}
)
