package files

import (
	"context"
	"encoding/json"
	"fmt"

	"filebeam/cron"
	filesRepo "filebeam/database/repository/files"
	"filebeam/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// EventQueue is the subset of the asynq client the service uses.
// *asynq.Client satisfies it; tests substitute a fake.
type EventQueue interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// DefaultFileService is the production implementation. Record creation is
// authoritative; the queued event is a side effect that is logged and
// swallowed on failure, so a broken queue never blocks file sharing.
type DefaultFileService struct {
	Repo   filesRepo.FileRepository
	Queue  EventQueue
	Logger *zap.Logger
}

func (s *DefaultFileService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.L()
}

// ShareFile creates a shared-file record and emits a file-shared event.
func (s *DefaultFileService) ShareFile(ctx context.Context, input ShareFileInput) (*models.SharedFile, error) {
	file := &models.SharedFile{
		FileName:      input.FileName,
		FileURL:       input.FileURL,
		SharedBy:      input.SharedBy,
		ShareWithRole: input.ShareWithRole,
		Description:   input.Description,
	}
	if err := s.Repo.CreateSharedFile(ctx, file); err != nil {
		return nil, fmt.Errorf("ShareFile: %w", err)
	}

	s.enqueue(cron.TypeFileShared, models.FileSharedPayload{
		FileID:        file.ID,
		FileName:      file.FileName,
		FileURL:       file.FileURL,
		SharedBy:      file.SharedBy,
		ShareWithRole: file.ShareWithRole,
		Description:   file.Description,
	})
	return file, nil
}

// RecordUpload creates an upload record and emits a file-uploaded event.
func (s *DefaultFileService) RecordUpload(ctx context.Context, input RecordUploadInput) (*models.UserFile, error) {
	file := &models.UserFile{
		FileName:   input.FileName,
		FileURL:    input.FileURL,
		UploadedBy: input.UploadedBy,
		FileType:   input.FileType,
	}
	if err := s.Repo.CreateUserFile(ctx, file); err != nil {
		return nil, fmt.Errorf("RecordUpload: %w", err)
	}

	s.enqueue(cron.TypeFileUploaded, models.FileUploadedPayload{
		FileID:     file.ID,
		FileName:   file.FileName,
		FileURL:    file.FileURL,
		UploadedBy: file.UploadedBy,
		FileType:   file.FileType,
	})
	return file, nil
}

func (s *DefaultFileService) enqueue(taskType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log().Warn("failed to marshal event payload",
			zap.String("task", taskType), zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(asynq.NewTask(taskType, data)); err != nil {
		s.log().Warn("failed to enqueue event",
			zap.String("task", taskType), zap.Error(err))
	}
}
