package notification

import (
	"context"

	deviceRepo "filebeam/database/repository/device"
	notificationRepo "filebeam/database/repository/notification"
	userRepo "filebeam/database/repository/user"
	"filebeam/models"

	"go.uber.org/zap"
)

// NotificationService defines the push fan-out entry points.
type NotificationService interface {
	// SendToEmail pushes a message to every device of the user identified
	// by email. Title falls back to a default when empty.
	SendToEmail(ctx context.Context, email, message, title string) models.FanOutResult
	// SendToRole pushes a message to every device of every approved user
	// with the given role.
	SendToRole(ctx context.Context, role, title, body string, data map[string]string) models.FanOutResult
	// SendFileToEmail pushes a file-received notification to the user
	// identified by email.
	SendFileToEmail(ctx context.Context, email, fileName, fileURL, title, message string) models.FanOutResult
	// NotifyFileShared reacts to a newly created shared-file record by
	// broadcasting to the target role. Event-driven: nothing is returned
	// and errors are only logged.
	NotifyFileShared(ctx context.Context, payload models.FileSharedPayload)
	// NotifyFileUploaded reacts to a newly created upload record by
	// notifying the uploader's devices. Event-driven like NotifyFileShared.
	NotifyFileUploaded(ctx context.Context, payload models.FileUploadedPayload)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users     userRepo.UserRepository
	Devices   deviceRepo.DeviceRepository
	Audit     notificationRepo.NotificationRepository
	Transport PushTransport
	// Width bounds the number of concurrent sends per fan-out.
	Width  int
	Logger *zap.Logger
}

func (s *DefaultNotificationService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}
