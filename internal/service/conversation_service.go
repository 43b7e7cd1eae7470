package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/model"
)

const (
	summaryEvery  = 4
	summarySystem = "You are an assistant that creates concise, comprehensive summaries of job search conversations."
)

// ConversationService owns the short-term chat state. The cache is the
// source of truth for a live conversation; the users table keeps an
// append-only mirror for users who are signed in.
type ConversationService struct {
	cache        ConversationCache
	users        UserStore
	llm          client.Completer
	summaryModel string
}

func NewConversationService(cache ConversationCache, users UserStore, llm client.Completer, summaryModel string) *ConversationService {
	return &ConversationService{
		cache:        cache,
		users:        users,
		llm:          llm,
		summaryModel: summaryModel,
	}
}

// Resolve returns the conversation for id, creating it when id is empty or
// unknown to both the cache and the mirror.
func (s *ConversationService) Resolve(ctx context.Context, id string) (*model.Conversation, error) {
	if id == "" {
		return s.create(ctx, uuid.New().String())
	}

	conv, err := s.cache.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv != nil {
		return conv, nil
	}

	rec, err := s.users.FindConversation(ctx, id)
	if err != nil {
		log.Printf("Conversation %s: mirror lookup failed: %v", id, err)
	}
	if rec == nil {
		return s.create(ctx, id)
	}

	conv = &model.Conversation{
		ID:        id,
		Summary:   rec.Summary,
		Messages:  rec.History,
		CreatedAt: rec.ChangeTime,
	}
	if err := s.cache.Save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) create(ctx context.Context, id string) (*model.Conversation, error) {
	conv := &model.Conversation{
		ID:        id,
		Messages:  []model.Message{},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.cache.Save(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// AppendMessage adds one turn, refreshes the summary on every fourth
// message and mirrors the conversation to the user's row when userID is set.
func (s *ConversationService) AppendMessage(ctx context.Context, conv *model.Conversation, role, content, userID string) error {
	conv.Messages = append(conv.Messages, model.Message{Role: role, Content: content})

	if len(conv.Messages)%summaryEvery == 0 {
		summary, err := s.summarize(ctx, conv)
		if err != nil {
			return fmt.Errorf("failed to summarize conversation: %w", err)
		}
		conv.Summary = summary
	}

	if err := s.cache.Save(ctx, conv); err != nil {
		return err
	}

	if userID == "" {
		return nil
	}
	// The mirror is best effort; the cache already holds the turn.
	rec := model.ConversationRecord{
		ConversationID: conv.ID,
		Summary:        conv.Summary,
		History:        conv.Messages,
		ChangeTime:     time.Now().UTC(),
	}
	if err := s.users.AppendConversation(ctx, userID, rec); err != nil {
		log.Printf("Conversation %s: failed to mirror for user %s: %v", conv.ID, userID, err)
	}
	return nil
}

func (s *ConversationService) summarize(ctx context.Context, conv *model.Conversation) (string, error) {
	recent := conv.Messages[len(conv.Messages)-summaryEvery:]
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, m.Role+": "+m.Content)
	}

	prompt := fmt.Sprintf(`Previous conversation summary: %s

Recent conversation:
%s

Please create an updated summary of the entire conversation that includes only the important information.
Focus on the user's job search preferences, specific requirements, and any important details mentioned.
Keep it concise but comprehensive.`, conv.Summary, strings.Join(lines, "\n"))

	return s.llm.Complete(ctx, client.CompletionRequest{
		Model: s.summaryModel,
		Messages: []client.ChatMessage{
			{Role: "system", Content: summarySystem},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   500,
	})
}
