package client

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"google.golang.org/genai"

	"github.com/intellijobs/api/internal/config"
)

// ErrDimensionMismatch means the embedding model is not the one the job
// listings were indexed with.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NewEmbedder builds the configured provider and wraps it with a width check.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (Embedder, error) {
	var inner Embedder
	switch cfg.Provider {
	case "", "openai":
		inner = NewOpenAIEmbedder(cfg)
	case "gemini":
		g, err := NewGeminiEmbedder(ctx, cfg)
		if err != nil {
			return nil, err
		}
		inner = g
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return &checkedEmbedder{inner: inner, dims: cfg.Dimensions}, nil
}

// checkedEmbedder rejects vectors that cannot be compared with the listing index.
type checkedEmbedder struct {
	inner Embedder
	dims  int
}

func (e *checkedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	if e.dims > 0 && len(vec) != e.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), e.dims)
	}
	for i, val := range vec {
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, val)
		}
	}
	return vec, nil
}

func (e *checkedEmbedder) Dimensions() int { return e.dims }

// OpenAIEmbedder calls any OpenAI-compatible /embeddings endpoint, including
// a self-hosted text-embeddings-inference server for gte-base.
type OpenAIEmbedder struct {
	client openai.Client
	model  string
	dims   int
}

func NewOpenAIEmbedder(cfg *config.EmbeddingConfig) *OpenAIEmbedder {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		dims:   cfg.Dimensions,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(e.model),
	}
	// only the v3 OpenAI models accept a requested width
	if strings.HasPrefix(e.model, "text-embedding-3") && e.dims > 0 {
		params.Dimensions = openai.Int(int64(e.dims))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	out := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		out[i] = float32(v)
	}
	return out, nil
}

func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

// GeminiEmbedder uses the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

func NewGeminiEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedder: %w", ErrNotConfigured)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" || strings.Contains(model, "/") {
		model = "gemini-embedding-001"
	}
	return &GeminiEmbedder{client: c, model: model, dims: cfg.Dimensions}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	var embedCfg *genai.EmbedContentConfig
	if e.dims > 0 {
		embedCfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(e.dims))}
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, content, embedCfg)
	if err != nil {
		return nil, fmt.Errorf("generate embedding failed: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}
	return result.Embeddings[0].Values, nil
}

func (e *GeminiEmbedder) Dimensions() int { return e.dims }
