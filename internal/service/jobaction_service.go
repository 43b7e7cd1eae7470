package service

import (
	"context"

	"github.com/intellijobs/api/internal/model"
)

// JobActionService tracks which listings a user saved or applied to.
type JobActionService struct {
	users UserStore
}

func NewJobActionService(users UserStore) *JobActionService {
	return &JobActionService{users: users}
}

// Apply mutates the user's stats and writes the whole structure back.
// Repeating an action leaves the stats unchanged.
func (s *JobActionService) Apply(ctx context.Context, userID, jobID string, action model.JobAction) (*model.JobActionResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if !action.Valid() || jobID == "" {
		return nil, ErrInvalidAction
	}

	stats, err := s.users.GetJobStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Apply(action, jobID)

	if err := s.users.SaveJobStats(ctx, userID, stats); err != nil {
		return nil, err
	}

	return &model.JobActionResponse{
		Success:  true,
		JobStats: stats,
		Counts:   stats.Counts(),
	}, nil
}

// Actions returns the saved and applied id lists.
func (s *JobActionService) Actions(ctx context.Context, userID string) (*model.JobStats, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	stats, err := s.users.GetJobStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *JobActionService) Counts(ctx context.Context, userID string) (*model.JobCounts, error) {
	stats, err := s.Actions(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := stats.Counts()
	return &counts, nil
}
