package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"filebeam/database"
	"filebeam/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo creates a new instance of NotificationRepository
// using MongoDB.
func NewMongoNotificationRepo() NotificationRepository {
	coll := database.Collection("notifications")
	repo := &MongoNotificationRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipientUid", Value: 1}, {Key: "sentAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create appends one audit record. Missing ID and SentAt are filled in;
// Read always starts false.
func (r *MongoNotificationRepo) Create(ctx context.Context, record *models.Notification) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.SentAt.IsZero() {
		record.SentAt = time.Now()
	}
	record.Read = false

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert notification record: %w", err)
	}
	return nil
}
