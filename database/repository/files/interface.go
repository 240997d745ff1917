package filesRepo

import (
	"context"

	"filebeam/models"
)

// FileRepository stores shared-file and upload records. Creating a record
// is what the notification triggers react to.
type FileRepository interface {
	CreateSharedFile(ctx context.Context, file *models.SharedFile) error
	CreateUserFile(ctx context.Context, file *models.UserFile) error
}
