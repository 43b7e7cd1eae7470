package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/extract"
	"github.com/intellijobs/api/internal/model"
)

// ResumeService accepts resumes and hands them to the background pipeline.
type ResumeService struct {
	store client.FileStore
	tasks *TaskService
}

func NewResumeService(store client.FileStore, tasks *TaskService) *ResumeService {
	return &ResumeService{
		store: store,
		tasks: tasks,
	}
}

// Upload stores the file and enqueues text extraction.
func (s *ResumeService) Upload(ctx context.Context, userID, filename string, body io.Reader, contentType string) (*model.UploadResumeResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	fileType := extract.FileType(filename)
	if !extract.Supported(fileType) {
		return nil, ErrUnsupportedFormat
	}

	key := fmt.Sprintf("%s/%s_%s", userID, uuid.New().String(), filepath.Base(filename))
	locator, err := s.store.Save(ctx, key, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store resume: %w", err)
	}

	taskID, err := s.tasks.Enqueue(ctx, TaskTypeResumeExtract, userID, model.ExtractTaskPayload{
		UserID:   userID,
		Path:     locator,
		FileType: fileType,
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, locator); delErr != nil {
			log.Printf("Failed to remove orphaned upload %s: %v", locator, delErr)
		}
		return nil, err
	}

	log.Printf("Resume uploaded for user %s: %s (task %s)", userID, locator, taskID)
	return &model.UploadResumeResponse{
		Success: true,
		Message: "Resume uploaded successfully. Processing started.",
		TaskID:  taskID,
	}, nil
}

// SubmitText enqueues parsing of resume text that is already extracted.
func (s *ResumeService) SubmitText(ctx context.Context, userID, text string) (*model.ParseResumeResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResumeText
	}

	taskID, err := s.tasks.Enqueue(ctx, TaskTypeResumeParse, userID, model.ParseTaskPayload{
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return nil, err
	}
	return &model.ParseResumeResponse{TaskID: taskID, Status: "processing"}, nil
}
