package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/extract"
	"github.com/intellijobs/api/internal/metrics"
	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/service"
)

// ResumeWorker runs the resume ingestion pipeline. Extraction and parsing
// are separate tasks so raw text can enter the pipeline directly.
type ResumeWorker struct {
	tasks    *service.TaskService
	store    client.FileStore
	users    service.UserStore
	parser   *service.ParserService
	embedder client.Embedder
	notifier service.Notifier
}

// NewResumeWorker creates a new resume worker
func NewResumeWorker(
	tasks *service.TaskService,
	store client.FileStore,
	users service.UserStore,
	parser *service.ParserService,
	embedder client.Embedder,
	notifier service.Notifier,
) *ResumeWorker {
	return &ResumeWorker{
		tasks:    tasks,
		store:    store,
		users:    users,
		parser:   parser,
		embedder: embedder,
		notifier: notifier,
	}
}

// Register binds the task handlers to mux.
func (w *ResumeWorker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(service.TaskTypeResumeExtract, w.ProcessExtract)
	mux.HandleFunc(service.TaskTypeResumeParse, w.ProcessParse)
}

// ProcessExtract reads the stored file, records its path and hands the
// text to a resume:parse task.
func (w *ResumeWorker) ProcessExtract(ctx context.Context, t *asynq.Task) error {
	var env model.TaskEnvelope
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	var payload model.ExtractTaskPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return w.fail(ctx, t, env.TaskID, "", fmt.Errorf("invalid payload: %w", err))
	}

	taskID := env.TaskID
	log.Printf("Starting resume extraction %s for user %s", taskID, payload.UserID)
	w.markStarted(ctx, taskID)

	if !extract.Supported(payload.FileType) {
		return w.fail(ctx, t, taskID, payload.UserID, extract.ErrUnsupportedFormat)
	}
	w.progress(ctx, taskID, payload.UserID, 10, "Extracting text")

	text, err := w.extractText(ctx, payload)
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, err)
	}

	if err := w.users.SaveResumeInfo(ctx, payload.UserID, model.RawPathResume(payload.Path)); err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, fmt.Errorf("failed to save resume path: %w", err))
	}
	w.progress(ctx, taskID, payload.UserID, 30, "Text extracted")

	childID, err := w.tasks.Enqueue(ctx, service.TaskTypeResumeParse, payload.UserID, model.ParseTaskPayload{
		UserID: payload.UserID,
		Text:   text,
	})
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, err)
	}

	w.complete(ctx, t, taskID, model.TaskResult{Status: "Text extracted", Message: childID})
	log.Printf("Resume extraction %s done, parsing in %s", taskID, childID)
	return nil
}

func (w *ResumeWorker) extractText(ctx context.Context, payload model.ExtractTaskPayload) (string, error) {
	defer observe("extract", time.Now())

	rc, err := w.store.Open(ctx, payload.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open resume: %w", err)
	}
	defer rc.Close()
	return extract.Text(rc, payload.FileType)
}

// ProcessParse structures the text, embeds it and stores the result.
func (w *ResumeWorker) ProcessParse(ctx context.Context, t *asynq.Task) error {
	var env model.TaskEnvelope
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}
	var payload model.ParseTaskPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return w.fail(ctx, t, env.TaskID, "", fmt.Errorf("invalid payload: %w", err))
	}

	taskID := env.TaskID
	log.Printf("Starting resume parsing %s for user %s", taskID, payload.UserID)
	w.markStarted(ctx, taskID)
	w.progress(ctx, taskID, payload.UserID, 50, "Parsing resume")

	start := time.Now()
	parsed, err := w.parser.Parse(ctx, payload.Text)
	observe("parse", start)
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, err)
	}

	w.progress(ctx, taskID, payload.UserID, 70, "Generating embedding")
	vector, err := w.embed(ctx, parsed)
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, err)
	}

	w.progress(ctx, taskID, payload.UserID, 90, "Saving resume")
	parsedData, err := json.Marshal(parsed)
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, err)
	}
	info := model.StructuredResumeInfo(&model.StructuredResume{
		ParsedData: parsedData,
		ChangeTime: time.Now().UTC(),
		Vector:     vector,
	})

	start = time.Now()
	err = w.users.SaveResumeInfo(ctx, payload.UserID, info)
	observe("store", start)
	if err != nil {
		return w.fail(ctx, t, taskID, payload.UserID, fmt.Errorf("failed to save resume: %w", err))
	}

	w.complete(ctx, t, taskID, model.TaskResult{Status: "Resume processed", Message: "success"})
	w.notifier.Notify(ctx, payload.UserID, model.EventResumeProcessed, model.ResumeProcessedEvent{
		UserID:  payload.UserID,
		Success: true,
	})
	log.Printf("Resume parsing %s completed for user %s", taskID, payload.UserID)
	return nil
}

func (w *ResumeWorker) embed(ctx context.Context, parsed *model.ParsedResume) ([]float32, error) {
	defer observe("embed", time.Now())

	text, err := service.ResumeEmbeddingText(parsed)
	if err != nil {
		return nil, err
	}
	return w.embedder.Embed(ctx, text)
}

func (w *ResumeWorker) markStarted(ctx context.Context, taskID string) {
	if err := w.tasks.MarkStarted(ctx, taskID); err != nil {
		log.Printf("Failed to mark task %s started: %v", taskID, err)
	}
}

func (w *ResumeWorker) progress(ctx context.Context, taskID, userID string, progress int, step string) {
	if err := w.tasks.UpdateProgress(ctx, taskID, progress, step); err != nil {
		log.Printf("Failed to update progress: %v", err)
	}
	w.notifier.Notify(ctx, userID, model.EventResumeProgress, model.ResumeProgressEvent{
		UserID:   userID,
		TaskID:   taskID,
		Progress: progress,
		Step:     step,
	})
}

func (w *ResumeWorker) complete(ctx context.Context, t *asynq.Task, taskID string, result model.TaskResult) {
	if err := w.tasks.Complete(ctx, taskID, result); err != nil {
		log.Printf("Failed to complete task %s: %v", taskID, err)
	}
	writeResult(t, result)
	metrics.TasksCompletedTotal.WithLabelValues(t.Type(), string(model.TaskStateSuccess)).Inc()
}

// fail records the failure, emits the single failure event for this
// resume and tells asynq not to retry.
func (w *ResumeWorker) fail(ctx context.Context, t *asynq.Task, taskID, userID string, cause error) error {
	log.Printf("Task %s (%s) failed: %v", taskID, t.Type(), cause)

	if err := w.tasks.Fail(ctx, taskID, cause.Error()); err != nil {
		log.Printf("Failed to mark task %s as failed: %v", taskID, err)
	}
	writeResult(t, model.TaskResult{Status: "error", Message: cause.Error()})
	metrics.TasksCompletedTotal.WithLabelValues(t.Type(), string(model.TaskStateFailure)).Inc()

	if userID != "" {
		w.notifier.Notify(ctx, userID, model.EventResumeProcessed, model.ResumeProcessedEvent{
			UserID:  userID,
			Success: false,
			Error:   cause.Error(),
		})
	}
	return fmt.Errorf("%v: %w", cause, asynq.SkipRetry)
}

// writeResult stores the result with asynq as well, so status survives the
// task record's expiry. Tasks built outside a server have no writer.
func writeResult(t *asynq.Task, result model.TaskResult) {
	rw := t.ResultWriter()
	if rw == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if _, err := rw.Write(data); err != nil {
		log.Printf("Failed to write result for task %s: %v", rw.TaskID(), err)
	}
}

func observe(stage string, start time.Time) {
	metrics.PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
