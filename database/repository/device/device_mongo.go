package deviceRepo

import (
	"context"
	"fmt"

	"filebeam/database"
	"filebeam/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeviceRepo implements DeviceRepository over the embedded devices
// array of the users collection.
type MongoDeviceRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceRepo creates a new instance of DeviceRepository using MongoDB.
func NewMongoDeviceRepo() DeviceRepository {
	return &MongoDeviceRepo{coll: database.Collection("users")}
}

// tokenProjection limits reads to the fields the registry needs.
var tokenProjection = bson.M{"id": 1, "devices": 1}

// TokensByUserID returns the flattened token refs for one user. An unknown
// user yields zero refs, not an error.
func (r *MongoDeviceRepo) TokensByUserID(ctx context.Context, userID string) ([]models.TokenRef, error) {
	var user models.User
	opts := options.FindOne().SetProjection(tokenProjection)
	err := r.coll.FindOne(ctx, bson.M{"id": userID}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load devices for user %s: %w", userID, err)
	}
	return flattenTokens(user), nil
}

// TokensByUserIDs returns the flattened token refs across many users.
func (r *MongoDeviceRepo) TokensByUserIDs(ctx context.Context, userIDs []string) ([]models.TokenRef, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetProjection(tokenProjection)
	cursor, err := r.coll.Find(ctx, bson.M{"id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load devices for %d users: %w", len(userIDs), err)
	}
	defer cursor.Close(ctx)

	var refs []models.TokenRef
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user devices: %w", err)
		}
		refs = append(refs, flattenTokens(user)...)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error while loading devices: %w", err)
	}
	return refs, nil
}

// RemoveDevice deletes the device entry identified by (userID, deviceID).
func (r *MongoDeviceRepo) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	update := bson.M{"$pull": bson.M{"devices": bson.M{"deviceId": deviceID}}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove device %s for user %s: %w", deviceID, userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("no user %s found while removing device %s", userID, deviceID)
	}
	return nil
}

// flattenTokens turns a user's embedded devices into token refs, skipping
// devices that carry no token.
func flattenTokens(user models.User) []models.TokenRef {
	var refs []models.TokenRef
	for _, device := range user.Devices {
		if device.FCMToken == "" {
			continue
		}
		refs = append(refs, models.TokenRef{
			Token:    device.FCMToken,
			UserID:   user.ID,
			DeviceID: device.DeviceID,
		})
	}
	return refs
}
