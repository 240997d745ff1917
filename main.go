// File: filebeam/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filebeam/config"
	"filebeam/cron"
	"filebeam/database"
	deviceRepoPkg "filebeam/database/repository/device"
	filesRepoPkg "filebeam/database/repository/files"
	notificationRepoPkg "filebeam/database/repository/notification"
	userRepoPkg "filebeam/database/repository/user"
	"filebeam/handlers"
	"filebeam/middleware"
	"filebeam/routes"
	"filebeam/services/files"
	"filebeam/services/notification"
	"filebeam/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.FirebaseInit()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()
	fileRepo := filesRepoPkg.NewMongoFileRepo()

	// services.
	notificationService := &notification.DefaultNotificationService{
		Users:     userRepo,
		Devices:   deviceRepo,
		Audit:     notificationRepo,
		Transport: notification.NewFCMTransport(utils.FCMClient),
		Width:     config.AppConfig.FanOutWidth,
		Logger:    logger,
	}

	queueClient := cron.NewQueueClient()
	defer queueClient.Close()

	fileService := &files.DefaultFileService{
		Repo:   fileRepo,
		Queue:  queueClient,
		Logger: logger,
	}

	// Subscribe the notification service to file record creation events.
	cron.InitEventWorker(notificationService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Notification: handlers.NewNotificationHandler(notificationService),
		Files:        handlers.NewFileHandler(fileService, cloudinaryStorageService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
