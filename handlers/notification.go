package handlers

import (
	"net/http"

	"filebeam/services/notification"

	"github.com/gin-gonic/gin"
)

// NotificationHandler exposes the direct-call fan-out entry points.
type NotificationHandler struct {
	Service notification.NotificationService
}

func NewNotificationHandler(svc notification.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

type sendByEmailRequest struct {
	CustomerEmail       string `json:"customerEmail"`
	NotificationMessage string `json:"notificationMessage"`
	Title               string `json:"title"`
}

// SendByEmailHandler pushes a message to one recipient identified by email.
// Required fields are checked before any store access.
func (h *NotificationHandler) SendByEmailHandler(c *gin.Context) {
	var req sendByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.CustomerEmail == "" || req.NotificationMessage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: customerEmail, notificationMessage"})
		return
	}

	result := h.Service.SendToEmail(c.Request.Context(), req.CustomerEmail, req.NotificationMessage, req.Title)
	c.JSON(http.StatusOK, result)
}

type sendByRoleRequest struct {
	Role  string            `json:"role"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// SendByRoleHandler broadcasts a message to every approved member of a role.
func (h *NotificationHandler) SendByRoleHandler(c *gin.Context) {
	var req sendByRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.Role == "" || req.Title == "" || req.Body == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: role, title, body"})
		return
	}

	result := h.Service.SendToRole(c.Request.Context(), req.Role, req.Title, req.Body, req.Data)
	c.JSON(http.StatusOK, result)
}

type sendFileRequest struct {
	CustomerEmail string `json:"customerEmail"`
	FileName      string `json:"fileName"`
	FileURL       string `json:"fileUrl"`
	Title         string `json:"title"`
	Message       string `json:"message"`
}

// SendFileHandler notifies one recipient that a file was sent to them.
func (h *NotificationHandler) SendFileHandler(c *gin.Context) {
	var req sendFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "detail": err.Error()})
		return
	}
	if req.CustomerEmail == "" || req.FileName == "" || req.FileURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required parameters: customerEmail, fileName, fileUrl"})
		return
	}

	result := h.Service.SendFileToEmail(c.Request.Context(), req.CustomerEmail, req.FileName, req.FileURL, req.Title, req.Message)
	c.JSON(http.StatusOK, result)
}
