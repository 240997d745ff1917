package routes

import (
	"net/http"
	"time"

	"filebeam/handlers"
	"filebeam/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterNotificationRoutes registers the admin push endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.POST("/email", hb.Notification.SendByEmailHandler)
		api.POST("/role", hb.Notification.SendByRoleHandler)
		api.POST("/file", hb.Notification.SendFileHandler)
	}
}

// RegisterFileRoutes registers file sharing and upload endpoints.
func RegisterFileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/files")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.POST("/share", hb.Files.ShareFileHandler)
		api.POST("/upload/:type/:bucket", hb.Files.UploadFileHandler)
	}
}

// RegisterHealthRoute registers the liveness endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes wires CORS and every route group onto the router.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterNotificationRoutes(r, hb)
	RegisterFileRoutes(r, hb)
	RegisterHealthRoute(r)
}
