package notification

import (
	"context"
	"strings"

	"filebeam/models"

	"go.uber.org/zap"
)

// resolveEmail maps an email address to its user. The email is normalized
// before lookup. A customer that has not been approved resolves the same
// way as a missing user: (nil, nil). Errors mean the store is unavailable.
func (s *DefaultNotificationService) resolveEmail(ctx context.Context, email string) (*models.User, error) {
	normalized := normalizeEmail(email)

	user, err := s.Users.GetByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log().Info("user not found", zap.String("email", normalized))
		return nil, nil
	}
	if user.Role == models.RoleCustomer && !user.IsApproved {
		s.log().Info("user found but not approved", zap.String("email", normalized))
		return nil, nil
	}
	return user, nil
}

// resolveRole maps a role to the ids of its approved members. Unapproved
// users are excluded whatever the role.
func (s *DefaultNotificationService) resolveRole(ctx context.Context, role string) ([]string, error) {
	users, err := s.Users.GetApprovedByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
