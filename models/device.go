// File: filebeam/models/device.go
package models

import "time"

// Device is one registered device of a user. DeviceID is unique within the
// owning user's device set; FCMToken is opaque and assigned by the transport.
type Device struct {
	DeviceID   string    `bson:"deviceId" json:"deviceId"`
	DeviceName string    `bson:"deviceName" json:"deviceName"`
	Platform   string    `bson:"platform" json:"platform"`
	FCMToken   string    `bson:"fcmToken" json:"-"`
	LastSeen   time.Time `bson:"lastSeen" json:"lastSeen"`
}

// TokenRef is a flattened delivery target: one live token together with the
// (user, device) pair that owns it. Token strings are not guaranteed unique
// across users, so the pair is what identifies a registry entry.
type TokenRef struct {
	Token    string
	UserID   string
	DeviceID string
}
