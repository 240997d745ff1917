// File: filebeam/models/files.go
package models

import "time"

// SharedFile is a file an admin shared with every member of a role.
// Creating one triggers a role-broadcast notification.
type SharedFile struct {
	ID            string    `bson:"id" json:"id"`
	FileName      string    `bson:"fileName" json:"fileName"`
	FileURL       string    `bson:"fileUrl" json:"fileUrl"`
	SharedBy      string    `bson:"sharedBy" json:"sharedBy"`
	ShareWithRole string    `bson:"shareWithRole" json:"shareWithRole"`
	Description   string    `bson:"description" json:"description"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// UserFile is a file uploaded from the web client on behalf of a user.
// Creating one triggers a direct notification to the uploader's devices.
type UserFile struct {
	ID         string    `bson:"id" json:"id"`
	FileName   string    `bson:"fileName" json:"fileName"`
	FileURL    string    `bson:"fileUrl" json:"fileUrl"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
	FileType   string    `bson:"fileType" json:"fileType"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// FileSharedPayload is the queue payload emitted when a SharedFile record
// is created.
type FileSharedPayload struct {
	FileID        string `json:"fileId"`
	FileName      string `json:"fileName"`
	FileURL       string `json:"fileUrl"`
	SharedBy      string `json:"sharedBy"`
	ShareWithRole string `json:"shareWithRole"`
	Description   string `json:"description"`
}

// FileUploadedPayload is the queue payload emitted when a UserFile record
// is created.
type FileUploadedPayload struct {
	FileID     string `json:"fileId"`
	FileName   string `json:"fileName"`
	FileURL    string `json:"fileUrl"`
	UploadedBy string `json:"uploadedBy"`
	FileType   string `json:"fileType"`
}
