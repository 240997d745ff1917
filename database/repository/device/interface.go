package deviceRepo

import (
	"context"

	"filebeam/models"
)

// DeviceRepository is the token registry: it reads the live delivery tokens
// registered for a user and removes entries the transport has declared
// permanently invalid.
type DeviceRepository interface {
	// TokensByUserID returns the flattened token refs for one user.
	// A user with no registered devices contributes zero refs.
	TokensByUserID(ctx context.Context, userID string) ([]models.TokenRef, error)
	// TokensByUserIDs returns the flattened token refs across many users.
	TokensByUserIDs(ctx context.Context, userIDs []string) ([]models.TokenRef, error)
	// RemoveDevice deletes the device entry identified by (userID, deviceID).
	RemoveDevice(ctx context.Context, userID, deviceID string) error
}
