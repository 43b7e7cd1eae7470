package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellijobs/api/internal/model"
)

func setupCache(t *testing.T, ttl time.Duration) (*ConversationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewConversationCache(client, ttl), mr
}

func TestConversationCache_Missing(t *testing.T) {
	cache, _ := setupCache(t, 0)
	conv, err := cache.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, conv)
}

func TestConversationCache_SaveAndGet(t *testing.T) {
	cache, mr := setupCache(t, time.Hour)
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	err := cache.Save(ctx, &model.Conversation{
		ID:      "c1",
		Summary: "looking for go jobs",
		Messages: []model.Message{
			{Role: model.RoleUser, Content: "any go roles?"},
			{Role: model.RoleAssistant, Content: "yes, three"},
		},
		CreatedAt: created,
	})
	require.NoError(t, err)

	assert.Equal(t, "looking for go jobs", mr.HGet("conversation:c1", "summary"))
	assert.Equal(t, time.Hour, mr.TTL("conversation:c1"))

	conv, err := cache.Get(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	assert.Equal(t, "c1", conv.ID)
	assert.Len(t, conv.Messages, 2)
	assert.Equal(t, "yes, three", conv.Messages[1].Content)
	assert.True(t, created.Equal(conv.CreatedAt))
}

func TestConversationCache_CorruptMessages(t *testing.T) {
	cache, mr := setupCache(t, 0)
	mr.HSet("conversation:bad", "messages", "{oops")

	_, err := cache.Get(context.Background(), "bad")
	assert.Error(t, err)
}
