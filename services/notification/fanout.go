package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"filebeam/models"

	"go.uber.org/zap"
)

const (
	defaultTitle       = "New Notification"
	defaultFileTitle   = "You Received a File"
	defaultFileMessage = "A new file has been sent to you"
	defaultFanOutWidth = 16
)

// SendToEmail pushes a message to every device of the user identified by
// email and returns the aggregated result.
func (s *DefaultNotificationService) SendToEmail(ctx context.Context, email, message, title string) models.FanOutResult {
	if title == "" {
		title = defaultTitle
	}
	payload := models.PushPayload{
		Title: title,
		Body:  message,
		Data: withTimestamp(map[string]string{
			"type":       "admin_message",
			"senderType": "admin",
		}),
	}
	return s.fanOutToEmail(ctx, email, payload)
}

// SendFileToEmail pushes a file-received notification to the user
// identified by email.
func (s *DefaultNotificationService) SendFileToEmail(ctx context.Context, email, fileName, fileURL, title, message string) models.FanOutResult {
	if title == "" {
		title = defaultFileTitle
	}
	if message == "" {
		message = defaultFileMessage
	}
	payload := models.PushPayload{
		Title: title,
		Body:  fmt.Sprintf("%s - %s", fileName, message),
		Data: withTimestamp(map[string]string{
			"type":       "file_received",
			"fileName":   fileName,
			"fileUrl":    fileURL,
			"senderType": "admin",
		}),
	}
	return s.fanOutToEmail(ctx, email, payload)
}

// SendToRole pushes a message to every device of every approved user with
// the given role. Caller-supplied data is copied before timestamping so the
// payload stays immutable from the caller's point of view.
func (s *DefaultNotificationService) SendToRole(ctx context.Context, role, title, body string, data map[string]string) models.FanOutResult {
	payload := models.PushPayload{
		Title: title,
		Body:  body,
		Data:  withTimestamp(cloneData(data)),
	}
	return s.fanOutToRole(ctx, role, payload)
}

// NotifyFileShared reacts to a newly created shared-file record by
// broadcasting to the target role. Errors are logged, never propagated:
// the caller is an event subscriber, not an RPC caller.
func (s *DefaultNotificationService) NotifyFileShared(ctx context.Context, p models.FileSharedPayload) {
	senderName := "Admin"
	sharer, err := s.Users.GetByID(ctx, p.SharedBy)
	if err != nil {
		s.log().Warn("could not load sharing user",
			zap.String("userId", p.SharedBy), zap.Error(err))
	} else if sharer != nil && sharer.Email != "" {
		senderName = sharer.Email
	}

	payload := models.PushPayload{
		Title: "New File Shared",
		Body:  fmt.Sprintf("The file %s has been shared with you", p.FileName),
		Data: withTimestamp(map[string]string{
			"type":        "file_shared",
			"fileName":    p.FileName,
			"fileUrl":     p.FileURL,
			"senderName":  senderName,
			"description": p.Description,
		}),
	}

	result := s.fanOutToRole(ctx, p.ShareWithRole, payload)
	s.log().Info("file share notification finished",
		zap.String("role", p.ShareWithRole),
		zap.String("fileName", p.FileName),
		zap.Int("successCount", result.SuccessCount),
		zap.Int("failureCount", result.FailureCount))
}

// NotifyFileUploaded reacts to a newly created upload record by notifying
// the uploader's devices. Errors are logged, never propagated.
func (s *DefaultNotificationService) NotifyFileUploaded(ctx context.Context, p models.FileUploadedPayload) {
	fileType := p.FileType
	if fileType == "" {
		fileType = "unknown"
	}
	payload := models.PushPayload{
		Title: "File Upload Complete",
		Body:  fmt.Sprintf("%s was uploaded successfully", p.FileName),
		Data: withTimestamp(map[string]string{
			"type":     "file_uploaded",
			"fileName": p.FileName,
			"fileUrl":  p.FileURL,
			"fileType": fileType,
		}),
	}

	refs, err := s.Devices.TokensByUserID(ctx, p.UploadedBy)
	if err != nil {
		s.log().Error("failed to load device tokens",
			zap.String("userId", p.UploadedBy), zap.Error(err))
		return
	}
	if len(refs) == 0 {
		s.log().Info("no device tokens found for user",
			zap.String("userId", p.UploadedBy))
		return
	}

	outcomes := s.dispatchAll(ctx, refs, payload)
	successCount, failureCount, invalid := tally(outcomes)
	s.pruneInvalid(ctx, invalid)
	s.recordAudit(ctx, p.UploadedBy, payload)
	s.log().Info("file upload notification finished",
		zap.String("fileName", p.FileName),
		zap.Int("successCount", successCount),
		zap.Int("failureCount", failureCount))
}

// fanOutToEmail resolves the recipient, dispatches to every token, prunes
// condemned tokens and writes one audit record for the recipient.
func (s *DefaultNotificationService) fanOutToEmail(ctx context.Context, email string, payload models.PushPayload) models.FanOutResult {
	user, err := s.resolveEmail(ctx, email)
	if err != nil {
		s.log().Error("recipient lookup failed", zap.Error(err))
		return models.FanOutResult{
			Success:      false,
			Message:      err.Error(),
			FailureCount: 1,
		}
	}
	if user == nil {
		return models.FanOutResult{
			Success:      false,
			Message:      fmt.Sprintf("user not found or not approved: %s", email),
			FailureCount: 1,
		}
	}

	refs, err := s.Devices.TokensByUserID(ctx, user.ID)
	if err != nil {
		s.log().Error("failed to load device tokens",
			zap.String("userId", user.ID), zap.Error(err))
		return models.FanOutResult{
			Success:      false,
			Message:      err.Error(),
			FailureCount: 1,
		}
	}
	if len(refs) == 0 {
		// A recipient with no devices counts as one failed delivery.
		return models.FanOutResult{
			Success:      false,
			Message:      fmt.Sprintf("no device tokens found for user: %s", user.Email),
			FailureCount: 1,
			UserFound:    true,
		}
	}

	outcomes := s.dispatchAll(ctx, refs, payload)
	successCount, failureCount, invalid := tally(outcomes)
	s.pruneInvalid(ctx, invalid)
	// One record per recipient, written after all attempts whatever the
	// outcome. The record is user-facing history, not delivery diagnostics.
	s.recordAudit(ctx, user.ID, payload)

	message := fmt.Sprintf("notification sent to %s", user.Email)
	if successCount == 0 {
		message = fmt.Sprintf("notification could not be delivered to %s", user.Email)
	}
	return models.FanOutResult{
		Success:      successCount > 0,
		Message:      message,
		SuccessCount: successCount,
		FailureCount: failureCount,
		UserFound:    true,
	}
}

// fanOutToRole dispatches to every token of every approved member of the
// role. One audit record accompanies each delivered send, written after all
// attempts have completed.
func (s *DefaultNotificationService) fanOutToRole(ctx context.Context, role string, payload models.PushPayload) models.FanOutResult {
	userIDs, err := s.resolveRole(ctx, role)
	if err != nil {
		s.log().Error("role lookup failed", zap.String("role", role), zap.Error(err))
		return models.FanOutResult{Success: false, Message: err.Error()}
	}

	refs, err := s.Devices.TokensByUserIDs(ctx, userIDs)
	if err != nil {
		s.log().Error("failed to load device tokens for role",
			zap.String("role", role), zap.Error(err))
		return models.FanOutResult{Success: false, Message: err.Error()}
	}
	if len(refs) == 0 {
		return models.FanOutResult{
			Success: false,
			Message: fmt.Sprintf("no tokens found for role: %s", role),
		}
	}

	outcomes := s.dispatchAll(ctx, refs, payload)
	successCount, failureCount, invalid := tally(outcomes)
	s.pruneInvalid(ctx, invalid)
	for _, to := range outcomes {
		if to.outcome.Status == StatusDelivered {
			s.recordAudit(ctx, to.ref.UserID, payload)
		}
	}

	return models.FanOutResult{
		Success:      successCount > 0,
		Message:      fmt.Sprintf("sent %d notifications successfully", successCount),
		SuccessCount: successCount,
		FailureCount: failureCount,
	}
}

type tokenOutcome struct {
	ref     models.TokenRef
	outcome DispatchOutcome
}

// dispatchAll sends the payload to every token, at most Width sends in
// flight at once. Each goroutine writes only its own slot, so the outcome
// slice needs no lock; aggregation happens after Wait.
func (s *DefaultNotificationService) dispatchAll(ctx context.Context, refs []models.TokenRef, payload models.PushPayload) []tokenOutcome {
	width := s.Width
	if width <= 0 {
		width = defaultFanOutWidth
	}

	outcomes := make([]tokenOutcome, len(refs))
	sem := make(chan struct{}, width)
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ref models.TokenRef) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = tokenOutcome{ref: ref, outcome: s.Transport.Send(ctx, ref.Token, payload)}
		}(i, ref)
	}
	wg.Wait()
	return outcomes
}

func tally(outcomes []tokenOutcome) (successCount, failureCount int, invalid []models.TokenRef) {
	for _, to := range outcomes {
		switch to.outcome.Status {
		case StatusDelivered:
			successCount++
		case StatusPermanentFailure:
			failureCount++
			invalid = append(invalid, to.ref)
		default:
			failureCount++
		}
	}
	return successCount, failureCount, invalid
}

// pruneInvalid removes registry entries the transport condemned. Best
// effort: the delivery outcome already happened, so a failed prune is
// logged and swallowed.
func (s *DefaultNotificationService) pruneInvalid(ctx context.Context, invalid []models.TokenRef) {
	for _, ref := range invalid {
		if err := s.Devices.RemoveDevice(ctx, ref.UserID, ref.DeviceID); err != nil {
			s.log().Warn("failed to remove invalid device token",
				zap.String("userId", ref.UserID),
				zap.String("deviceId", ref.DeviceID),
				zap.Error(err))
			continue
		}
		s.log().Info("removed invalid device token",
			zap.String("userId", ref.UserID),
			zap.String("deviceId", ref.DeviceID))
	}
}

// recordAudit appends one audit record. Write failures are logged and
// swallowed: audit history must never fail a delivery that already happened.
func (s *DefaultNotificationService) recordAudit(ctx context.Context, recipientUID string, payload models.PushPayload) {
	record := &models.Notification{
		RecipientUID: recipientUID,
		Title:        payload.Title,
		Body:         payload.Body,
		Data:         payload.Data,
	}
	if err := s.Audit.Create(ctx, record); err != nil {
		s.log().Warn("failed to save notification record",
			zap.String("recipientUid", recipientUID), zap.Error(err))
	}
}

func withTimestamp(data map[string]string) map[string]string {
	if data == nil {
		data = make(map[string]string, 1)
	}
	data["timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	return data
}

func cloneData(data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	return out
}
