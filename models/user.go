// File: filebeam/models/user.go
package models

import "time"

// Role values used across the platform.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleDriver   = "driver"
)

// User represents a platform user. Devices are embedded so a user's
// delivery tokens travel with the document.
type User struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Role       string    `bson:"role" json:"role"`
	IsApproved bool      `bson:"isApproved" json:"isApproved"`
	Devices    []Device  `bson:"devices" json:"devices"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
