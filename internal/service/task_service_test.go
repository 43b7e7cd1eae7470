package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellijobs/api/internal/model"
)

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeInspector struct {
	info *asynq.TaskInfo
	err  error
}

func (i *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return i.info, i.err
}

func setupTaskService(t *testing.T, inspector TaskInspector) (*TaskService, *fakeQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	q := &fakeQueue{}
	return NewTaskService(client, q, inspector), q, mr
}

func TestTaskService_EnqueueRecordsPending(t *testing.T) {
	svc, q, mr := setupTaskService(t, nil)
	ctx := context.Background()

	id, err := svc.Enqueue(ctx, TaskTypeResumeParse, "u1", model.ParseTaskPayload{UserID: "u1", Text: "resume"})
	require.NoError(t, err)
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TaskTypeResumeParse, q.tasks[0].Type())
	assert.True(t, mr.Exists("task:"+id))

	var env model.TaskEnvelope
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &env))
	assert.Equal(t, id, env.TaskID)

	status, err := svc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatePending, status.State)
	assert.Equal(t, "Pending...", status.Status)
}

func TestTaskService_EnqueueFailureDropsRecord(t *testing.T) {
	svc, q, mr := setupTaskService(t, nil)
	q.err = errors.New("redis down")

	_, err := svc.Enqueue(context.Background(), TaskTypeResumeParse, "u1", nil)
	require.Error(t, err)
	assert.Empty(t, mr.Keys())
}

func TestTaskService_Lifecycle(t *testing.T) {
	svc, _, _ := setupTaskService(t, nil)
	ctx := context.Background()

	id, err := svc.Enqueue(ctx, TaskTypeResumeParse, "u1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.MarkStarted(ctx, id))
	status, _ := svc.GetStatus(ctx, id)
	assert.Equal(t, model.TaskStateStarted, status.State)

	require.NoError(t, svc.UpdateProgress(ctx, id, 50, "Parsing resume"))
	status, _ = svc.GetStatus(ctx, id)
	assert.Equal(t, model.TaskStateProcessing, status.State)
	assert.Equal(t, "Parsing resume", status.Status)

	require.NoError(t, svc.Complete(ctx, id, model.TaskResult{Status: "Resume processed", Message: "success"}))
	status, _ = svc.GetStatus(ctx, id)
	assert.Equal(t, &model.TaskStatusResponse{State: model.TaskStateSuccess, Status: "Resume processed", Message: "success"}, status)

	// terminal states are final
	assert.ErrorIs(t, svc.Fail(ctx, id, "late failure"), ErrTaskTerminal)
	status, _ = svc.GetStatus(ctx, id)
	assert.Equal(t, model.TaskStateSuccess, status.State)
}

func TestTaskService_FailureShape(t *testing.T) {
	svc, _, _ := setupTaskService(t, nil)
	ctx := context.Background()

	id, err := svc.Enqueue(ctx, TaskTypeResumeExtract, "u1", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Fail(ctx, id, "unsupported file format"))

	status, err := svc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &model.TaskStatusResponse{State: model.TaskStateFailure, Status: "error", Message: "unsupported file format"}, status)
}

func TestTaskService_UnknownIDIsPending(t *testing.T) {
	svc, _, _ := setupTaskService(t, &fakeInspector{err: asynq.ErrTaskNotFound})

	status, err := svc.GetStatus(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatePending, status.State)
}

func TestTaskService_InspectorFallback(t *testing.T) {
	result, _ := json.Marshal(model.TaskResult{Status: "done", Message: "ok"})

	svc, _, _ := setupTaskService(t, &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateCompleted, Result: result}})
	status, err := svc.GetStatus(context.Background(), "expired-record")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateSuccess, status.State)
	assert.Equal(t, "ok", status.Message)

	svc, _, _ = setupTaskService(t, &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateArchived, LastErr: "boom"}})
	status, err = svc.GetStatus(context.Background(), "expired-record")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateFailure, status.State)
	assert.Equal(t, "boom", status.Message)
}

func TestTaskService_InspectorCorruptResult(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	svc, _, _ := setupTaskService(t, &fakeInspector{info: &asynq.TaskInfo{State: asynq.TaskStateCompleted, Result: []byte("{not json")}})
	status, err := svc.GetStatus(context.Background(), "expired-record")
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateSuccess, status.State)
	assert.Contains(t, logs.String(), "Task expired-record: unreadable result")
}
