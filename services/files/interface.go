package files

import (
	"context"

	"filebeam/models"
)

// ShareFileInput describes a file being shared with every member of a role.
type ShareFileInput struct {
	FileName      string
	FileURL       string
	SharedBy      string
	ShareWithRole string
	Description   string
}

// RecordUploadInput describes a completed web upload for a user.
type RecordUploadInput struct {
	FileName   string
	FileURL    string
	UploadedBy string
	FileType   string
}

// FileService creates file records and emits the creation events the
// notification worker reacts to.
type FileService interface {
	ShareFile(ctx context.Context, input ShareFileInput) (*models.SharedFile, error)
	RecordUpload(ctx context.Context, input RecordUploadInput) (*models.UserFile, error)
}
