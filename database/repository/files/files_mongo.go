package filesRepo

import (
	"context"
	"fmt"
	"time"

	"filebeam/database"
	"filebeam/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoFileRepo implements FileRepository using MongoDB.
type MongoFileRepo struct {
	shared *mongo.Collection
	userFs *mongo.Collection
}

// NewMongoFileRepo creates a new instance of FileRepository using MongoDB.
func NewMongoFileRepo() FileRepository {
	return &MongoFileRepo{
		shared: database.Collection("shared_files"),
		userFs: database.Collection("user_files"),
	}
}

// CreateSharedFile inserts a shared-file record, filling in ID and CreatedAt.
func (r *MongoFileRepo) CreateSharedFile(ctx context.Context, file *models.SharedFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	if _, err := r.shared.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("failed to insert shared file record: %w", err)
	}
	return nil
}

// CreateUserFile inserts an upload record, filling in ID and UploadedAt.
func (r *MongoFileRepo) CreateUserFile(ctx context.Context, file *models.UserFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}
	if _, err := r.userFs.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("failed to insert user file record: %w", err)
	}
	return nil
}
