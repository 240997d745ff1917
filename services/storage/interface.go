package storage

import (
	"context"
)

// StorageService defines the interface for file storage operations.
type StorageService interface {
	// UploadFile uploads a local file into destFolder and returns the
	// permanent identifier assigned by the storage backend.
	UploadFile(ctx context.Context, localFilePath, destFolder string) (string, error)
	// GetDownloadURL constructs a public URL for a stored file.
	GetDownloadURL(ctx context.Context, resourceType, publicID string) (string, error)
}
