package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/handler"
	"github.com/intellijobs/api/internal/middleware"
	"github.com/intellijobs/api/internal/model"
	"github.com/intellijobs/api/internal/repository"
	"github.com/intellijobs/api/internal/service"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp holds all components needed for testing
type testApp struct {
	app   *fiber.App
	users *memUsers
	index *staticIndex
	jobs  *staticJobs
	queue *recordingQueue
	llm   *scriptedLLM
	redis *miniredis.Miniredis
}

// setupApp creates a Fiber app wired like main.go, with in-memory stores
// and a miniredis instance in place of the external services.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	ta := &testApp{
		users: newMemUsers(),
		index: &staticIndex{},
		jobs:  &staticJobs{docs: map[int64]model.JobListing{}},
		queue: &recordingQueue{},
		llm:   &scriptedLLM{reply: "Here are some jobs."},
		redis: mr,
	}

	validate := validator.New()
	store, err := client.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	embedder := &fixedEmbedder{vec: []float32{0.1, 0.2, 0.3}}

	// Services
	taskService := service.NewTaskService(redisClient, ta.queue, nil)
	conversationService := service.NewConversationService(repository.NewConversationCache(redisClient, time.Hour), ta.users, ta.llm, "summary")
	searchService := service.NewSearchService(conversationService, embedder, ta.index, ta.llm, 5)
	matcherService := service.NewMatcherService(ta.users, ta.index, ta.jobs, 20, 100)
	jobActionService := service.NewJobActionService(ta.users)
	userService := service.NewUserService(ta.users)
	resumeService := service.NewResumeService(store, taskService)

	// Handlers
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthCheck{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	})
	searchHandler := handler.NewSearchHandler(searchService, validate)
	resumeHandler := handler.NewResumeHandler(resumeService, validate)
	taskHandler := handler.NewTaskHandler(taskService)
	userHandler := handler.NewUserHandler(userService, validate)
	jobHandler := handler.NewJobHandler(matcherService, jobActionService, validate)

	authMiddleware := middleware.NewAuthMiddleware(testJWTSecret)
	authHandler := handler.NewAuthHandler(authMiddleware.Verifier())
	rateLimiter := middleware.NewRateLimiter(redisClient)
	identify := authMiddleware.Optional()

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
	})

	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)
	app.Get("/auth/verify", authHandler.Verify)
	app.Get("/task-status/:id", taskHandler.Status)

	// Use very high rate limits so tests don't get blocked
	app.Post("/job-search", identify, rateLimiter.SearchLimit(10000), searchHandler.Search)
	app.Post("/parse-resume", identify, rateLimiter.UploadLimit(10000), resumeHandler.ParseText)

	api := app.Group("/api", identify)
	api.Post("/upload-resume", rateLimiter.UploadLimit(10000), resumeHandler.Upload)
	api.Post("/sync-user", userHandler.Sync)
	api.Post("/check-resume", userHandler.CheckResume)
	api.Get("/recommended-jobs", jobHandler.Recommended)
	api.Post("/job-action", jobHandler.Action)
	api.Get("/user-job-actions", jobHandler.UserActions)
	api.Get("/job-stats", jobHandler.Stats)

	ta.app = app
	return ta
}

// generateToken creates an HMAC JWT token for test requests.
func generateToken(t *testing.T, userID string) string {
	t.Helper()
	signed, err := middleware.NewAuthMiddleware(testJWTSecret).GenerateToken(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// errorCode extracts error.code from the error envelope.
func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	e, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

type memUsers struct {
	mu            sync.Mutex
	rows          map[string]bool
	resumes       map[string]model.ResumeInfo
	stats         map[string]model.JobStats
	conversations map[string][]model.ConversationRecord
}

func newMemUsers() *memUsers {
	return &memUsers{
		rows:          map[string]bool{},
		resumes:       map[string]model.ResumeInfo{},
		stats:         map[string]model.JobStats{},
		conversations: map[string][]model.ConversationRecord{},
	}
}

func (m *memUsers) Insert(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[userID] {
		return false, nil
	}
	m.rows[userID] = true
	return true, nil
}

func (m *memUsers) GetResumeInfo(_ context.Context, userID string) (model.ResumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.rows[userID] {
		return model.EmptyResume(), repository.ErrUserNotFound
	}
	if info, ok := m.resumes[userID]; ok {
		return info, nil
	}
	return model.EmptyResume(), nil
}

func (m *memUsers) SaveResumeInfo(_ context.Context, userID string, info model.ResumeInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = true
	m.resumes[userID] = info
	return nil
}

func (m *memUsers) GetJobStats(_ context.Context, userID string) (model.JobStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[userID]; ok {
		return model.JobStats{
			Saved:   append([]string{}, s.Saved...),
			Applied: append([]string{}, s.Applied...),
		}, nil
	}
	return model.NewJobStats(), nil
}

func (m *memUsers) SaveJobStats(_ context.Context, userID string, stats model.JobStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[userID] = true
	m.stats[userID] = stats
	return nil
}

func (m *memUsers) AppendConversation(_ context.Context, userID string, rec model.ConversationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[userID] = append(m.conversations[userID], rec)
	return nil
}

func (m *memUsers) FindConversation(context.Context, string) (*model.ConversationRecord, error) {
	return nil, nil
}

type staticIndex struct {
	matches []model.VectorMatch
}

func (s *staticIndex) Search(_ context.Context, _ []float32, topK int, _ model.VectorFilter) ([]model.VectorMatch, error) {
	if topK < len(s.matches) {
		return s.matches[:topK], nil
	}
	return s.matches, nil
}

type staticJobs struct {
	docs map[int64]model.JobListing
}

func (s *staticJobs) FindByIDs(_ context.Context, ids []int64) (map[int64]model.JobListing, error) {
	out := map[int64]model.JobListing{}
	for _, id := range ids {
		if d, ok := s.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

type scriptedLLM struct {
	mu     sync.Mutex
	reply  string
	prompt string
}

func (s *scriptedLLM) Complete(_ context.Context, req client.CompletionRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = req.Messages[len(req.Messages)-1].Content
	return s.reply, nil
}

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(context.Context, string) ([]float32, error) { return f.vec, nil }
func (f *fixedEmbedder) Dimensions() int                                  { return len(f.vec) }

type recordingQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (q *recordingQueue) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}
