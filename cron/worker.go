package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"filebeam/config"
	"filebeam/models"
	"filebeam/services/notification"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Task types emitted when a file record is created.
const (
	TypeFileShared   = "file:shared"
	TypeFileUploaded = "file:uploaded"
)

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	}
}

// NewQueueClient returns the asynq client used to emit file events.
func NewQueueClient() *asynq.Client {
	return asynq.NewClient(redisOpts())
}

// InitEventWorker runs the async worker in background. It subscribes the
// notification service to file record creation events.
func InitEventWorker(notifSvc notification.NotificationService) {
	srv := asynq.NewServer(
		redisOpts(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeFileShared, handleFileSharedTask(notifSvc))
	mux.HandleFunc(TypeFileUploaded, handleFileUploadedTask(notifSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[EventWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[EventWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[EventWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// handleFileSharedTask reacts to a shared-file record. No caller is waiting
// on the event, so every failure is logged and swallowed.
func handleFileSharedTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.FileSharedPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[FileSharedHandler] Invalid payload: %v", err)
			return nil
		}

		log.Printf("[FileSharedHandler] File %s shared with role %s", p.FileName, p.ShareWithRole)
		notifSvc.NotifyFileShared(ctx, p)
		return nil
	}
}

// handleFileUploadedTask reacts to an upload record, same error policy as
// handleFileSharedTask.
func handleFileUploadedTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.FileUploadedPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[FileUploadedHandler] Invalid payload: %v", err)
			return nil
		}

		log.Printf("[FileUploadedHandler] File %s uploaded by %s", p.FileName, p.UploadedBy)
		notifSvc.NotifyFileUploaded(ctx, p)
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[EventWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
