package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/model"
)

// ConversationCache keeps live conversations in a Redis hash per id.
type ConversationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewConversationCache(redisClient *redis.Client, ttl time.Duration) *ConversationCache {
	return &ConversationCache{redis: redisClient, ttl: ttl}
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

// Get returns nil when the conversation is not cached.
func (c *ConversationCache) Get(ctx context.Context, id string) (*model.Conversation, error) {
	fields, err := c.redis.HGetAll(ctx, conversationKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading conversation: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	conv := &model.Conversation{
		ID:       id,
		Summary:  fields["summary"],
		Messages: []model.Message{},
	}
	if raw := fields["messages"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &conv.Messages); err != nil {
			return nil, fmt.Errorf("decoding conversation messages: %w", err)
		}
	}
	if raw := fields["created_at"]; raw != "" {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			conv.CreatedAt = ts
		}
	}
	return conv, nil
}

// Save overwrites all fields of the conversation hash.
func (c *ConversationCache) Save(ctx context.Context, conv *model.Conversation) error {
	msgs := conv.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding conversation messages: %w", err)
	}

	key := conversationKey(conv.ID)
	pipe := c.redis.TxPipeline()
	pipe.HSet(ctx, key,
		"summary", conv.Summary,
		"messages", string(data),
		"created_at", conv.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}
	return nil
}
