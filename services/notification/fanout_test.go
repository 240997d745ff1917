package notification_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	deviceRepo "filebeam/database/repository/device"
	notificationRepo "filebeam/database/repository/notification"
	userRepo "filebeam/database/repository/user"
	"filebeam/models"
	"filebeam/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeUserRepo struct {
	users []models.User
	err   error
}

var _ userRepo.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetApprovedByRole(_ context.Context, role string) ([]models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.User
	for _, u := range f.users {
		if u.Role == role && u.IsApproved {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeDeviceRepo struct {
	mu        sync.Mutex
	tokens    map[string][]models.TokenRef
	removed   []string
	err       error
	removeErr error
}

var _ deviceRepo.DeviceRepository = (*fakeDeviceRepo)(nil)

func (f *fakeDeviceRepo) TokensByUserID(_ context.Context, userID string) ([]models.TokenRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[userID], nil
}

func (f *fakeDeviceRepo) TokensByUserIDs(_ context.Context, userIDs []string) ([]models.TokenRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.TokenRef
	for _, id := range userIDs {
		out = append(out, f.tokens[id]...)
	}
	return out, nil
}

func (f *fakeDeviceRepo) RemoveDevice(_ context.Context, userID, deviceID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, userID+"/"+deviceID)
	kept := f.tokens[userID][:0]
	for _, ref := range f.tokens[userID] {
		if ref.DeviceID != deviceID {
			kept = append(kept, ref)
		}
	}
	f.tokens[userID] = kept
	return nil
}

func (f *fakeDeviceRepo) hasToken(userID, deviceID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ref := range f.tokens[userID] {
		if ref.DeviceID == deviceID {
			return true
		}
	}
	return false
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	records []models.Notification
	err     error
}

var _ notificationRepo.NotificationRepository = (*fakeAuditRepo)(nil)

func (f *fakeAuditRepo) Create(_ context.Context, record *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAuditRepo) recipients() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.records {
		out = append(out, r.RecipientUID)
	}
	return out
}

type sentCall struct {
	token   string
	payload models.PushPayload
}

type fakeTransport struct {
	mu          sync.Mutex
	statuses    map[string]notification.DispatchStatus
	sent        []sentCall
	inFlight    int
	maxInFlight int
}

var _ notification.PushTransport = (*fakeTransport)(nil)

func (f *fakeTransport) Send(_ context.Context, token string, payload models.PushPayload) notification.DispatchOutcome {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.sent = append(f.sent, sentCall{token: token, payload: payload})
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	status, ok := f.statuses[token]
	if !ok {
		status = notification.StatusDelivered
	}
	outcome := notification.DispatchOutcome{Status: status, Token: token}
	if status != notification.StatusDelivered {
		outcome.Detail = "transport error"
	}
	return outcome
}

func (f *fakeTransport) sentTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, call := range f.sent {
		out = append(out, call.token)
	}
	return out
}

func newService(users *fakeUserRepo, devices *fakeDeviceRepo, audit *fakeAuditRepo, transport *fakeTransport) *notification.DefaultNotificationService {
	return &notification.DefaultNotificationService{
		Users:     users,
		Devices:   devices,
		Audit:     audit,
		Transport: transport,
		Width:     4,
		Logger:    zap.NewNop(),
	}
}

func approvedCustomer(id, email string) models.User {
	return models.User{ID: id, Email: email, Role: models.RoleCustomer, IsApproved: true}
}

// --- single recipient flow ---

func TestSendToEmail_UserNotFound(t *testing.T) {
	users := &fakeUserRepo{}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "nobody@example.com", "hello", "")

	assert.False(t, result.Success)
	assert.False(t, result.UserFound)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Empty(t, transport.sentTokens())
	assert.Empty(t, audit.records)
}

func TestSendToEmail_UnapprovedCustomerTreatedAsNotFound(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "jane@example.com", Role: models.RoleCustomer, IsApproved: false},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.False(t, result.Success)
	assert.False(t, result.UserFound)
	assert.Empty(t, transport.sentTokens(), "no dispatch may be attempted")
	assert.Empty(t, audit.records, "no audit record may be created")
}

func TestSendToEmail_NormalizesEmailBeforeLookup(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "Jane@Example.com  ", "hello", "")

	assert.True(t, result.Success)
	assert.True(t, result.UserFound)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "u1", audit.records[0].RecipientUID)
}

func TestSendToEmail_NoDevicesCountsAsOneFailure(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.False(t, result.Success)
	assert.True(t, result.UserFound)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Empty(t, audit.records)
}

func TestSendToEmail_PermanentFailurePrunesToken(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {
			{Token: "t1", UserID: "u1", DeviceID: "d1"},
			{Token: "t2", UserID: "u1", DeviceID: "d2"},
		},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{statuses: map[string]notification.DispatchStatus{
		"t2": notification.StatusPermanentFailure,
	}}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.True(t, result.Success, "partial success reports overall success")
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Equal(t, []string{"u1/d2"}, devices.removed)
	assert.True(t, devices.hasToken("u1", "d1"))
	assert.False(t, devices.hasToken("u1", "d2"))
	// One audit record per recipient, not per token.
	require.Len(t, audit.records, 1)
}

func TestSendToEmail_TransientFailureKeepsToken(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{statuses: map[string]notification.DispatchStatus{
		"t1": notification.StatusTransientFailure,
	}}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Empty(t, devices.removed)
	assert.True(t, devices.hasToken("u1", "d1"))
	// The audit record is still written: it documents the attempt.
	require.Len(t, audit.records, 1)
}

func TestSendToEmail_StoreErrorReturnsFailureResult(t *testing.T) {
	users := &fakeUserRepo{err: errors.New("connection refused")}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.False(t, result.Success)
	assert.False(t, result.UserFound)
	assert.Contains(t, result.Message, "connection refused")
	assert.Empty(t, transport.sentTokens())
}

func TestSendToEmail_SideEffectFailuresAreSwallowed(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{
		tokens: map[string][]models.TokenRef{
			"u1": {
				{Token: "t1", UserID: "u1", DeviceID: "d1"},
				{Token: "t2", UserID: "u1", DeviceID: "d2"},
			},
		},
		removeErr: errors.New("write concern failed"),
	}
	audit := &fakeAuditRepo{err: errors.New("insert failed")}
	transport := &fakeTransport{statuses: map[string]notification.DispatchStatus{
		"t2": notification.StatusPermanentFailure,
	}}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToEmail(context.Background(), "jane@example.com", "hello", "")

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
}

func TestSendFileToEmail_PayloadShape(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendFileToEmail(context.Background(), "jane@example.com", "report.pdf", "https://cdn/report.pdf", "", "")

	assert.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	payload := transport.sent[0].payload
	assert.Equal(t, "report.pdf - A new file has been sent to you", payload.Body)
	assert.Equal(t, "file_received", payload.Data["type"])
	assert.Equal(t, "https://cdn/report.pdf", payload.Data["fileUrl"])
	assert.NotEmpty(t, payload.Data["timestamp"])
}

// --- role broadcast flow ---

func TestSendToRole_NoApprovedMembers(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "late@example.com", Role: models.RoleDriver, IsApproved: false},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToRole(context.Background(), models.RoleDriver, "title", "body", nil)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 0, result.FailureCount, "role broadcast treats nobody-to-notify as zero failures")
	assert.Empty(t, transport.sentTokens())
}

func TestSendToRole_MixedOutcomes(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.com", Role: models.RoleDriver, IsApproved: true},
		{ID: "u2", Email: "b@example.com", Role: models.RoleDriver, IsApproved: true},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
		"u2": {{Token: "t2", UserID: "u2", DeviceID: "d2"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{statuses: map[string]notification.DispatchStatus{
		"t2": notification.StatusPermanentFailure,
	}}
	svc := newService(users, devices, audit, transport)

	result := svc.SendToRole(context.Background(), models.RoleDriver, "title", "body", map[string]string{"k": "v"})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailureCount)
	assert.Equal(t, []string{"u2/d2"}, devices.removed)
	assert.True(t, devices.hasToken("u1", "d1"))
	// An audit record accompanies each delivered send only.
	assert.Equal(t, []string{"u1"}, audit.recipients())
}

func TestSendToRole_DataIsCopiedNotMutated(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.com", Role: models.RoleStaff, IsApproved: true},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	svc := newService(users, devices, &fakeAuditRepo{}, &fakeTransport{})

	data := map[string]string{"k": "v"}
	svc.SendToRole(context.Background(), models.RoleStaff, "title", "body", data)

	assert.Equal(t, map[string]string{"k": "v"}, data)
}

func TestFanOut_CountsAndSuccessInvariants(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.com", Role: models.RoleDriver, IsApproved: true},
	}}
	tokens := make([]models.TokenRef, 0, 9)
	statuses := map[string]notification.DispatchStatus{}
	for i := 0; i < 9; i++ {
		token := fmt.Sprintf("t%d", i)
		tokens = append(tokens, models.TokenRef{Token: token, UserID: "u1", DeviceID: fmt.Sprintf("d%d", i)})
		switch i % 3 {
		case 1:
			statuses[token] = notification.StatusTransientFailure
		case 2:
			statuses[token] = notification.StatusPermanentFailure
		}
	}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{"u1": tokens}}
	transport := &fakeTransport{statuses: statuses}
	svc := newService(users, devices, &fakeAuditRepo{}, transport)

	result := svc.SendToRole(context.Background(), models.RoleDriver, "title", "body", nil)

	assert.Equal(t, 9, result.SuccessCount+result.FailureCount)
	assert.Equal(t, result.SuccessCount > 0, result.Success)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 6, result.FailureCount)
	assert.Len(t, devices.removed, 3)
}

func TestFanOut_ConcurrencyIsBounded(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.com", Role: models.RoleDriver, IsApproved: true},
	}}
	tokens := make([]models.TokenRef, 0, 32)
	for i := 0; i < 32; i++ {
		tokens = append(tokens, models.TokenRef{Token: fmt.Sprintf("t%d", i), UserID: "u1", DeviceID: fmt.Sprintf("d%d", i)})
	}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{"u1": tokens}}
	transport := &fakeTransport{}
	svc := newService(users, devices, &fakeAuditRepo{}, transport)
	svc.Width = 3

	result := svc.SendToRole(context.Background(), models.RoleDriver, "title", "body", nil)

	assert.Equal(t, 32, result.SuccessCount)
	assert.LessOrEqual(t, transport.maxInFlight, 3)
}

// --- event-driven flows ---

func TestNotifyFileShared_BroadcastsToRole(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "admin1", Email: "boss@example.com", Role: models.RoleAdmin, IsApproved: true},
		{ID: "u1", Email: "a@example.com", Role: models.RoleDriver, IsApproved: true},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	svc.NotifyFileShared(context.Background(), models.FileSharedPayload{
		FileName:      "plan.pdf",
		FileURL:       "https://cdn/plan.pdf",
		SharedBy:      "admin1",
		ShareWithRole: models.RoleDriver,
	})

	require.Len(t, transport.sent, 1)
	payload := transport.sent[0].payload
	assert.Equal(t, "file_shared", payload.Data["type"])
	assert.Equal(t, "boss@example.com", payload.Data["senderName"])
	assert.Equal(t, []string{"u1"}, audit.recipients())
}

func TestNotifyFileShared_UnknownSharerFallsBackToAdmin(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{
		{ID: "u1", Email: "a@example.com", Role: models.RoleDriver, IsApproved: true},
	}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	transport := &fakeTransport{}
	svc := newService(users, devices, &fakeAuditRepo{}, transport)

	svc.NotifyFileShared(context.Background(), models.FileSharedPayload{
		FileName:      "plan.pdf",
		FileURL:       "https://cdn/plan.pdf",
		SharedBy:      "ghost",
		ShareWithRole: models.RoleDriver,
	})

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "Admin", transport.sent[0].payload.Data["senderName"])
}

func TestNotifyFileUploaded_NotifiesUploader(t *testing.T) {
	users := &fakeUserRepo{users: []models.User{approvedCustomer("u1", "jane@example.com")}}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{
		"u1": {{Token: "t1", UserID: "u1", DeviceID: "d1"}},
	}}
	audit := &fakeAuditRepo{}
	transport := &fakeTransport{}
	svc := newService(users, devices, audit, transport)

	svc.NotifyFileUploaded(context.Background(), models.FileUploadedPayload{
		FileName:   "photo.jpg",
		FileURL:    "https://cdn/photo.jpg",
		UploadedBy: "u1",
	})

	require.Len(t, transport.sent, 1)
	payload := transport.sent[0].payload
	assert.Equal(t, "file_uploaded", payload.Data["type"])
	assert.Equal(t, "unknown", payload.Data["fileType"])
	assert.Equal(t, []string{"u1"}, audit.recipients())
}

func TestNotifyFileUploaded_NoDevicesIsQuiet(t *testing.T) {
	users := &fakeUserRepo{}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{}}
	transport := &fakeTransport{}
	audit := &fakeAuditRepo{}
	svc := newService(users, devices, audit, transport)

	svc.NotifyFileUploaded(context.Background(), models.FileUploadedPayload{
		FileName:   "photo.jpg",
		UploadedBy: "nobody",
	})

	assert.Empty(t, transport.sentTokens())
	assert.Empty(t, audit.records)
}

func TestNotifyFileShared_StoreErrorDoesNotPanic(t *testing.T) {
	users := &fakeUserRepo{err: errors.New("store down")}
	devices := &fakeDeviceRepo{tokens: map[string][]models.TokenRef{}}
	svc := newService(users, devices, &fakeAuditRepo{}, &fakeTransport{})

	assert.NotPanics(t, func() {
		svc.NotifyFileShared(context.Background(), models.FileSharedPayload{
			FileName:      "plan.pdf",
			ShareWithRole: models.RoleDriver,
		})
	})
}
