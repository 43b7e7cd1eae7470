package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellijobs/api/internal/model"
)

func TestUserService_Sync(t *testing.T) {
	svc := NewUserService(newMemUserStore())
	ctx := context.Background()

	resp, err := svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusInserted, resp.Status)

	resp, err = svc.Sync(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.SyncStatusExists, resp.Status)

	_, err = svc.Sync(ctx, "")
	assert.ErrorIs(t, err, ErrUserIDRequired)
}

func TestUserService_HasResume(t *testing.T) {
	users := newMemUserStore()
	svc := NewUserService(users)
	ctx := context.Background()

	resp, err := svc.HasResume(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, resp.HasResume)

	users.users["u1"] = true
	resp, err = svc.HasResume(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, resp.HasResume)

	users.resumes["u1"] = model.RawPathResume("u1/cv.pdf")
	resp, err = svc.HasResume(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, resp.HasResume)
}

func TestJobActionService_Apply(t *testing.T) {
	users := newMemUserStore()
	svc := NewJobActionService(users)
	ctx := context.Background()

	resp, err := svc.Apply(ctx, "u1", "42", model.ActionSave)
	require.NoError(t, err)
	assert.Equal(t, &model.JobActionResponse{
		Success:  true,
		JobStats: model.JobStats{Saved: []string{"42"}, Applied: []string{}},
		Counts:   model.JobCounts{Saved: 1, Applied: 0},
	}, resp)

	// idempotent
	again, err := svc.Apply(ctx, "u1", "42", model.ActionSave)
	require.NoError(t, err)
	assert.Equal(t, resp, again)

	_, err = svc.Apply(ctx, "u1", "7", model.ActionApply)
	require.NoError(t, err)
	resp, err = svc.Apply(ctx, "u1", "42", model.ActionUnsave)
	require.NoError(t, err)
	assert.Equal(t, model.JobStats{Saved: []string{}, Applied: []string{"7"}}, resp.JobStats)

	resp, err = svc.Apply(ctx, "u1", "99", model.ActionUnapply)
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, resp.JobStats.Applied)

	actions, err := svc.Actions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, actions.Applied)

	counts, err := svc.Counts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, &model.JobCounts{Saved: 0, Applied: 1}, counts)
}

func TestJobActionService_Validation(t *testing.T) {
	users := newMemUserStore()
	svc := NewJobActionService(users)
	ctx := context.Background()

	_, err := svc.Apply(ctx, "", "42", model.ActionSave)
	assert.ErrorIs(t, err, ErrUserIDRequired)
	_, err = svc.Apply(ctx, "u1", "42", model.JobAction("delete"))
	assert.ErrorIs(t, err, ErrInvalidAction)

	users.saveErr = errors.New("db down")
	_, err = svc.Apply(ctx, "u1", "42", model.ActionSave)
	assert.Error(t, err)
}
