package notificationRepo

import (
	"context"

	"filebeam/models"
)

// NotificationRepository is the append-only audit store for notification
// attempts. Records are never updated or read back by the dispatcher.
type NotificationRepository interface {
	Create(ctx context.Context, record *models.Notification) error
}
