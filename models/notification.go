// File: filebeam/models/notification.go
package models

import "time"

// Notification is the durable per-recipient audit record of a push attempt.
// It backs the user-facing notification history, not delivery diagnostics.
type Notification struct {
	ID           string            `bson:"id" json:"id"`
	RecipientUID string            `bson:"recipientUid" json:"recipientUid"`
	Title        string            `bson:"title" json:"title"`
	Body         string            `bson:"body" json:"body"`
	Data         map[string]string `bson:"data" json:"data"`
	SentAt       time.Time         `bson:"sentAt" json:"sentAt"`
	Read         bool              `bson:"read" json:"read"`
}

// PushPayload is the immutable content of one notification send. The
// destination token is the only thing that varies across recipients.
type PushPayload struct {
	Title string
	Body  string
	Data  map[string]string
}

// FanOutResult aggregates the per-token outcomes of one fan-out invocation.
// UserFound distinguishes "no such recipient / not approved" from "recipient
// exists but has no devices" on the single-recipient flows.
type FanOutResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SuccessCount int    `json:"successCount"`
	FailureCount int    `json:"failureCount"`
	UserFound    bool   `json:"userFound"`
}
