package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"filebeam/services/files"
	"filebeam/services/storage"

	"github.com/gin-gonic/gin"
)

// FileHandler exposes file sharing and upload endpoints. Both create store
// records whose creation events drive the notification worker.
type FileHandler struct {
	FileSvc    files.FileService
	StorageSvc storage.StorageService
}

func NewFileHandler(fileSvc files.FileService, storageSvc storage.StorageService) *FileHandler {
	return &FileHandler{FileSvc: fileSvc, StorageSvc: storageSvc}
}

// allowedBuckets defines permitted buckets for file uploads.
var allowedBuckets = map[string]bool{
	"images":    true,
	"videos":    true,
	"documents": true,
}

type shareFileRequest struct {
	FileName      string `json:"fileName"`
	FileURL       string `json:"fileUrl"`
	SharedBy      string `json:"sharedBy"`
	ShareWithRole string `json:"shareWithRole"`
	Description   string `json:"description"`
}

// ShareFileHandler records a file shared with a role.
func (h *FileHandler) ShareFileHandler(c *gin.Context) {
	var req shareFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.FileName == "" || req.FileURL == "" || req.SharedBy == "" || req.ShareWithRole == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: fileName, fileUrl, sharedBy, shareWithRole"})
		return
	}

	file, err := h.FileSvc.ShareFile(c.Request.Context(), files.ShareFileInput{
		FileName:      req.FileName,
		FileURL:       req.FileURL,
		SharedBy:      req.SharedBy,
		ShareWithRole: req.ShareWithRole,
		Description:   req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to share file", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file shared successfully", "file": file})
}

// UploadFileHandler handles web file uploads: the file goes to storage, an
// upload record is created, and the uploader's devices get notified.
func (h *FileHandler) UploadFileHandler(c *gin.Context) {
	fileType := c.Param("type")
	bucket := c.Param("bucket")
	if !allowedBuckets[bucket] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bucket; allowed values are 'images', 'videos' and 'documents'"})
		return
	}

	uploadedBy := c.PostForm("uploadedBy")
	if uploadedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameter: uploadedBy"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not provided", "detail": err.Error()})
		return
	}

	tempDir := os.TempDir()
	tempFilePath := filepath.Join(tempDir, fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempFilePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file", "detail": err.Error()})
		return
	}
	defer os.Remove(tempFilePath)

	destFolder := fileType + "s/" + bucket

	publicID, err := h.StorageSvc.UploadFile(c, tempFilePath, destFolder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file", "detail": err.Error()})
		return
	}

	downloadURL, err := h.StorageSvc.GetDownloadURL(c, fileType, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to construct download URL", "detail": err.Error()})
		return
	}

	file, err := h.FileSvc.RecordUpload(c.Request.Context(), files.RecordUploadInput{
		FileName:   fileHeader.Filename,
		FileURL:    downloadURL,
		UploadedBy: uploadedBy,
		FileType:   fileType,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record upload", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "file uploaded successfully",
		"downloadURL": downloadURL,
		"file":        file,
	})
}
