package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/model"
)

const (
	searchSystem = "You are a conversational assistant who helps users with their job search. Your tasks include providing job listings relevant to the user's query and answering any questions related to these listings. Consider the user's conversation history when relevant."

	searchTemplate = `Here are job listings that may be relevant to the user:

{{descriptions}}

User query: {{prompt}}

Answer using only the listings above. Mention the job title, company and location of each listing you recommend. If none of them fit, say so and suggest how the user could refine the search.`
)

// SearchService answers free-text job questions grounded on the closest
// listings in the vector index.
type SearchService struct {
	conversations *ConversationService
	embedder      client.Embedder
	index         VectorIndex
	llm           client.Completer
	topK          int
}

func NewSearchService(conversations *ConversationService, embedder client.Embedder, index VectorIndex, llm client.Completer, topK int) *SearchService {
	if topK <= 0 {
		topK = 5
	}
	return &SearchService{
		conversations: conversations,
		embedder:      embedder,
		index:         index,
		llm:           llm,
		topK:          topK,
	}
}

// Search runs one conversational turn.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	conv, err := s.conversations.Resolve(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.AppendMessage(ctx, conv, model.RoleUser, query, req.UserID); err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := s.index.Search(ctx, vector, s.topK, model.VectorFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to query job index: %w", err)
	}

	answer, err := s.llm.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{
			{Role: "system", Content: searchSystem},
			{Role: "user", Content: buildSearchPrompt(query, matches, conv.Summary)},
		},
		Temperature: 0,
		MaxTokens:   2500,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	if err := s.conversations.AppendMessage(ctx, conv, model.RoleAssistant, answer, req.UserID); err != nil {
		return nil, err
	}

	return &model.SearchResponse{
		Response:       answer,
		ConversationID: conv.ID,
	}, nil
}

func buildSearchPrompt(query string, matches []model.VectorMatch, summary string) string {
	descriptions := make([]string, 0, len(matches))
	for _, m := range matches {
		descriptions = append(descriptions, m.Description)
	}

	prompt := strings.NewReplacer(
		"{{descriptions}}", strings.Join(descriptions, "\n\n"),
		"{{prompt}}", query,
	).Replace(searchTemplate)

	if summary != "" {
		prompt += "\n\nConversation History Summary:\n" + summary
	}
	return prompt
}
