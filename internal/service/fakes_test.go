package service

import (
	"context"
	"sync"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/model"
)

type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []client.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req client.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }

type memUserStore struct {
	mu            sync.Mutex
	users         map[string]bool
	resumes       map[string]model.ResumeInfo
	stats         map[string]model.JobStats
	conversations map[string][]model.ConversationRecord
	saveErr       error
	saves         int
}

func newMemUserStore() *memUserStore {
	return &memUserStore{
		users:         map[string]bool{},
		resumes:       map[string]model.ResumeInfo{},
		stats:         map[string]model.JobStats{},
		conversations: map[string][]model.ConversationRecord{},
	}
}

func (m *memUserStore) Insert(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.users[userID] {
		return false, nil
	}
	m.users[userID] = true
	return true, nil
}

func (m *memUserStore) GetResumeInfo(_ context.Context, userID string) (model.ResumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.users[userID] {
		return model.EmptyResume(), ErrUserNotFound
	}
	if info, ok := m.resumes[userID]; ok {
		return info, nil
	}
	return model.EmptyResume(), nil
}

func (m *memUserStore) SaveResumeInfo(_ context.Context, userID string, info model.ResumeInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.users[userID] = true
	m.resumes[userID] = info
	return nil
}

func (m *memUserStore) GetJobStats(_ context.Context, userID string) (model.JobStats, error) {
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

func (m *memUserStore) SaveJobStats(_ context.Context, userID string, stats model.JobStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[userID] = true
	m.stats[userID] = stats
	return nil
}

func (m *memUserStore) AppendConversation(_ context.Context, userID string, rec model.ConversationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[userID] = append(m.conversations[userID], rec)
	return nil
}

func (m *memUserStore) FindConversation(_ context.Context, conversationID string) (*model.ConversationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *model.ConversationRecord
	for _, recs := range m.conversations {
		for i := range recs {
			if recs[i].ConversationID == conversationID {
				if found == nil || recs[i].ChangeTime.After(found.ChangeTime) {
					rec := recs[i]
					found = &rec
				}
			}
		}
	}
	return found, nil
}

type fakeIndex struct {
	matches []model.VectorMatch
	err     error
	topK    int
	filter  model.VectorFilter
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, topK int, filter model.VectorFilter) ([]model.VectorMatch, error) {
	f.topK = topK
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

type fakeJobs struct {
	docs map[int64]model.JobListing
	ids  []int64
}

func (f *fakeJobs) FindByIDs(_ context.Context, ids []int64) (map[int64]model.JobListing, error) {
	f.ids = ids
	out := map[int64]model.JobListing{}
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

type memCache struct {
	mu    sync.Mutex
	convs map[string]*model.Conversation
	saves int
}

func newMemCache() *memCache {
	return &memCache{convs: map[string]*model.Conversation{}}
}

func (c *memCache) Get(_ context.Context, id string) (*model.Conversation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	cp.Messages = append([]model.Message{}, conv.Messages...)
	return &cp, nil
}

func (c *memCache) Save(_ context.Context, conv *model.Conversation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves++
	cp := *conv
	cp.Messages = append([]model.Message{}, conv.Messages...)
	c.convs[conv.ID] = &cp
	return nil
}
