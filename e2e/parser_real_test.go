package e2e

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/config"
	"github.com/intellijobs/api/internal/service"
)

const sampleResume = `Ada Lovelace
ada@example.com | London, UK | github.com/ada

EXPERIENCE
Senior Backend Engineer, Babbage & Co (2019 - present)
- Built Go services on Postgres and Redis handling 2k requests per second

EDUCATION
BSc Mathematics, University College London, 2015

SKILLS
Go, PostgreSQL, Redis, Kubernetes`

// loadEnvFile loads the repository .env so real-API tests can find keys.
func loadEnvFile(t *testing.T) {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	envPath := filepath.Join(filepath.Dir(filename), "..", ".env")

	if err := godotenv.Load(envPath); err != nil {
		t.Skipf("skipping: .env file not found at %s", envPath)
	}
}

// TestParseResume_RealGroq parses a resume with the real Groq API.
func TestParseResume_RealGroq(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real Groq API test in short mode")
	}
	loadEnvFile(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	groqClient := client.NewGroqClient(&cfg.Groq)
	if !groqClient.IsConfigured() {
		t.Skip("skipping: GROQ_API_KEY not configured")
	}
	t.Logf("Groq config: baseURL=%s model=%s", cfg.Groq.BaseURL, cfg.Groq.Model)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	parsed, err := service.NewParserService(groqClient).Parse(ctx, sampleResume)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	name := gjson.ParseBytes(parsed.FullName).String()
	if !strings.Contains(name, "Ada") {
		t.Errorf("expected full_name to contain Ada, got %q", name)
	}

	text, err := service.ResumeEmbeddingText(parsed)
	if err != nil {
		t.Fatalf("embedding text failed: %v", err)
	}
	t.Logf("Embedding text: %s", text)
	if !strings.Contains(text, "Go") {
		t.Errorf("expected skills in embedding text, got %q", text)
	}
}
