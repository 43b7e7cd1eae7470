package service

import (
	"context"
	"errors"

	"github.com/intellijobs/api/internal/model"
)

// UserService covers account bookkeeping that the auth provider does not.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Sync inserts the user row if missing.
func (s *UserService) Sync(ctx context.Context, userID string) (*model.SyncUserResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	inserted, err := s.users.Insert(ctx, userID)
	if err != nil {
		return nil, err
	}
	if inserted {
		return &model.SyncUserResponse{Status: model.SyncStatusInserted}, nil
	}
	return &model.SyncUserResponse{Status: model.SyncStatusExists}, nil
}

// HasResume reports whether anything was ever stored for the user's resume.
// An unknown user has none.
func (s *UserService) HasResume(ctx context.Context, userID string) (*model.CheckResumeResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	info, err := s.users.GetResumeInfo(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return &model.CheckResumeResponse{HasResume: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &model.CheckResumeResponse{HasResume: info.Kind != model.ResumeEmpty}, nil
}
