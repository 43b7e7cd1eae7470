package service

import (
	"context"

	"github.com/intellijobs/api/internal/model"
)

// UserStore is the users table as seen by the services.
type UserStore interface {
	Insert(ctx context.Context, userID string) (bool, error)
	GetResumeInfo(ctx context.Context, userID string) (model.ResumeInfo, error)
	SaveResumeInfo(ctx context.Context, userID string, info model.ResumeInfo) error
	GetJobStats(ctx context.Context, userID string) (model.JobStats, error)
	SaveJobStats(ctx context.Context, userID string, stats model.JobStats) error
	AppendConversation(ctx context.Context, userID string, rec model.ConversationRecord) error
	FindConversation(ctx context.Context, conversationID string) (*model.ConversationRecord, error)
}

// VectorIndex is a nearest-neighbour lookup over job listing embeddings.
type VectorIndex interface {
	Search(ctx context.Context, embedding []float32, topK int, filter model.VectorFilter) ([]model.VectorMatch, error)
}

// JobStore hydrates job documents by id.
type JobStore interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.JobListing, error)
}

// ConversationCache is the short-term conversation store.
type ConversationCache interface {
	Get(ctx context.Context, id string) (*model.Conversation, error)
	Save(ctx context.Context, conv *model.Conversation) error
}

// Notifier delivers push events to a user's channel. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID, event string, data interface{})
}
