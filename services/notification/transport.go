package notification

import (
	"context"

	"filebeam/models"

	"firebase.google.com/go/v4/messaging"
)

// DispatchStatus classifies the outcome of sending one payload to one token.
type DispatchStatus int

const (
	// StatusDelivered means the transport accepted the message.
	StatusDelivered DispatchStatus = iota
	// StatusTransientFailure covers every transport error that does not
	// condemn the token. The token stays registered; no retry happens
	// within the current fan-out.
	StatusTransientFailure
	// StatusPermanentFailure means the registration token is unregistered
	// or invalid and must be pruned from the registry.
	StatusPermanentFailure
)

// DispatchOutcome is the classified result of one send attempt.
type DispatchOutcome struct {
	Status DispatchStatus
	Token  string
	Detail string
}

// MessagingClient is the subset of the Firebase messaging API the transport
// uses. *messaging.Client satisfies it; tests substitute a fake.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushTransport sends one payload to one token and classifies the result.
type PushTransport interface {
	Send(ctx context.Context, token string, payload models.PushPayload) DispatchOutcome
}

// FCMTransport is the production PushTransport over Firebase Cloud Messaging.
type FCMTransport struct {
	client MessagingClient
}

// NewFCMTransport wraps a messaging client. Pass utils.FCMClient in
// production.
func NewFCMTransport(client MessagingClient) *FCMTransport {
	return &FCMTransport{client: client}
}

// Send delivers one message to one token. A token is condemned only when
// FCM reports it unregistered or invalid; everything else (network, quota,
// auth) is a transient failure.
func (t *FCMTransport) Send(ctx context.Context, token string, payload models.PushPayload) DispatchOutcome {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Data: payload.Data,
	}

	if _, err := t.client.Send(ctx, msg); err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) || messaging.IsInvalidArgument(err) {
			return DispatchOutcome{Status: StatusPermanentFailure, Token: token, Detail: err.Error()}
		}
		return DispatchOutcome{Status: StatusTransientFailure, Token: token, Detail: err.Error()}
	}
	return DispatchOutcome{Status: StatusDelivered, Token: token}
}
