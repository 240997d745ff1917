package userRepo

import (
	"context"

	"filebeam/models"
)

// UserRepository defines read access to the user store. The notification
// core never creates or mutates users; registration lives elsewhere.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address. The email is
	// expected to be already normalized (trimmed, lowercased).
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetApprovedByRole retrieves all approved users with the given role.
	GetApprovedByRole(ctx context.Context, role string) ([]models.User, error)
}
