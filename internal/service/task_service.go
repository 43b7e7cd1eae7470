package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/metrics"
	"github.com/intellijobs/api/internal/model"
)

const (
	TaskTypeResumeExtract = "resume:extract"
	TaskTypeResumeParse   = "resume:parse"

	QueueResume = "resume"

	taskTTL       = 24 * time.Hour
	pendingStatus = "Pending..."
)

// TaskQueue is the enqueue side of asynq.Client.
type TaskQueue interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskInspector is the lookup side of asynq.Inspector.
type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

// TaskService enqueues background tasks and tracks their state in Redis so
// any process sharing the Redis instance can answer status queries.
type TaskService struct {
	redis     *redis.Client
	queue     TaskQueue
	inspector TaskInspector
}

func NewTaskService(redisClient *redis.Client, queue TaskQueue, inspector TaskInspector) *TaskService {
	return &TaskService{
		redis:     redisClient,
		queue:     queue,
		inspector: inspector,
	}
}

// Enqueue records a PENDING task and hands it to the queue. Tasks are never
// retried; a failed task has to be resubmitted by the caller.
func (s *TaskService) Enqueue(ctx context.Context, taskType, userID string, payload interface{}) (string, error) {
	taskID := uuid.New().String()
	now := time.Now()

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	task := &model.Task{
		ID:        taskID,
		Type:      taskType,
		UserID:    userID,
		State:     model.TaskStatePending,
		Status:    pendingStatus,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveTask(ctx, task); err != nil {
		return "", fmt.Errorf("failed to save task: %w", err)
	}

	envelope, err := json.Marshal(model.TaskEnvelope{TaskID: taskID, Payload: payloadBytes})
	if err != nil {
		return "", fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = s.queue.Enqueue(asynq.NewTask(taskType, envelope),
		asynq.TaskID(taskID),
		asynq.Queue(QueueResume),
		asynq.MaxRetry(0),
		asynq.Retention(taskTTL),
	)
	if err != nil {
		s.redis.Del(ctx, taskKey(taskID))
		return "", fmt.Errorf("failed to enqueue task: %w", err)
	}

	metrics.TasksEnqueuedTotal.WithLabelValues(taskType).Inc()
	return taskID, nil
}

// GetStatus never fails for an unknown id: it reports PENDING.
func (s *TaskService) GetStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error) {
	task, err := s.getTask(ctx, taskID)
	if err == nil {
		return statusOf(task.State, task.Status, task.Message), nil
	}
	if !errors.Is(err, ErrTaskNotFound) {
		return nil, err
	}
	return s.inspect(taskID), nil
}

// inspect falls back to the queue's own bookkeeping once the record is gone.
func (s *TaskService) inspect(taskID string) *model.TaskStatusResponse {
	if s.inspector == nil {
		return statusOf(model.TaskStatePending, "", "")
	}
	info, err := s.inspector.GetTaskInfo(QueueResume, taskID)
	if err != nil || info == nil {
		return statusOf(model.TaskStatePending, "", "")
	}

	switch info.State {
	case asynq.TaskStateActive:
		return statusOf(model.TaskStateStarted, "Task started", "")
	case asynq.TaskStateCompleted:
		var result model.TaskResult
		if err := json.Unmarshal(info.Result, &result); err != nil {
			log.Printf("Task %s: unreadable result %q: %v", taskID, info.Result, err)
		}
		return statusOf(model.TaskStateSuccess, result.Status, result.Message)
	case asynq.TaskStateArchived:
		return statusOf(model.TaskStateFailure, "", info.LastErr)
	default:
		return statusOf(model.TaskStatePending, "", "")
	}
}

func statusOf(state model.TaskState, status, message string) *model.TaskStatusResponse {
	switch state {
	case model.TaskStatePending:
		return &model.TaskStatusResponse{State: state, Status: pendingStatus}
	case model.TaskStateFailure:
		return &model.TaskStatusResponse{State: state, Status: "error", Message: message}
	default:
		return &model.TaskStatusResponse{State: state, Status: status, Message: message}
	}
}

// MarkStarted moves the task to STARTED (called by worker)
func (s *TaskService) MarkStarted(ctx context.Context, taskID string) error {
	return s.transition(ctx, taskID, func(t *model.Task) {
		t.State = model.TaskStateStarted
		t.Status = "Task started"
	})
}

// UpdateProgress records an intermediate stage (called by worker)
func (s *TaskService) UpdateProgress(ctx context.Context, taskID string, progress int, step string) error {
	return s.transition(ctx, taskID, func(t *model.Task) {
		t.State = model.TaskStateProcessing
		t.Status = step
		t.Progress = progress
	})
}

// Complete marks the task as succeeded (called by worker)
func (s *TaskService) Complete(ctx context.Context, taskID string, result model.TaskResult) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.transition(ctx, taskID, func(t *model.Task) {
		t.State = model.TaskStateSuccess
		t.Status = result.Status
		t.Message = result.Message
		t.Progress = 100
		t.Result = resultBytes
	})
}

// Fail marks the task as failed (called by worker)
func (s *TaskService) Fail(ctx context.Context, taskID string, errMsg string) error {
	return s.transition(ctx, taskID, func(t *model.Task) {
		t.State = model.TaskStateFailure
		t.Status = "error"
		t.Message = errMsg
	})
}

// transition applies fn unless the task already reached a terminal state.
// A missing record (expired, or enqueued elsewhere) is recreated.
func (s *TaskService) transition(ctx context.Context, taskID string, fn func(*model.Task)) error {
	task, err := s.getTask(ctx, taskID)
	if errors.Is(err, ErrTaskNotFound) {
		task = &model.Task{ID: taskID, CreatedAt: time.Now()}
	} else if err != nil {
		return err
	}

	if task.State.Terminal() {
		return ErrTaskTerminal
	}

	fn(task)
	task.UpdatedAt = time.Now()
	return s.saveTask(ctx, task)
}

// Helper methods

func taskKey(taskID string) string {
	return fmt.Sprintf("task:%s", taskID)
}

func (s *TaskService) saveTask(ctx context.Context, task *model.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, taskKey(task.ID), data, taskTTL).Err()
}

func (s *TaskService) getTask(ctx context.Context, taskID string) (*model.Task, error) {
	data, err := s.redis.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	var task model.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}

	return &task, nil
}
