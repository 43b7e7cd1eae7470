package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellijobs/api/internal/model"
)

const sampleParsed = `{
  "full_name": "Ada Lovelace",
  "email": "ada@example.com",
  "phone_number": "+44 1234",
  "github_portfolio": "github.com/ada",
  "linkedin_id": "ada-l",
  "current_location": "London",
  "education_details": [{"degree": "BSc Mathematics", "school": "UCL"}],
  "internships": null,
  "projects": ["Analytical Engine notes"],
  "work_experience": [{"role": "Engineer", "company": "Babbage & Co"}],
  "certifications": [],
  "achievements": ["First program"],
  "languages_known": ["English", "French"],
  "hobbies": ["Poetry"],
  "references": null,
  "technical_skills": ["Go", "Postgres"],
  "soft_skills": ["Writing"]
}`

func TestParserService_Parse(t *testing.T) {
	llm := &fakeCompleter{replies: []string{sampleParsed}}
	svc := NewParserService(llm)

	parsed, err := svc.Parse(context.Background(), "Ada Lovelace\nEngineer at Babbage & Co")
	require.NoError(t, err)

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "Ada Lovelace\nEngineer at Babbage & Co", req.Messages[1].Content)

	// all seventeen fields survive the round trip
	data, err := json.Marshal(parsed)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, len(model.ResumeFields))
	for _, f := range model.ResumeFields {
		assert.Contains(t, fields, f)
	}
	assert.JSONEq(t, sampleParsed, string(data))
}

func TestParserService_RejectsNonJSON(t *testing.T) {
	cases := map[string]string{
		"prose":  "Here is the parsed resume: {\"full_name\": \"Ada\"}",
		"fenced": "```json\n{\"full_name\": \"Ada\"}\n```",
		"array":  `[{"full_name": "Ada"}]`,
		"empty":  "",
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			svc := NewParserService(&fakeCompleter{replies: []string{reply}})
			_, err := svc.Parse(context.Background(), "resume text")
			assert.ErrorIs(t, err, ErrMalformedResume)
		})
	}
}

func TestParserService_UpstreamError(t *testing.T) {
	svc := NewParserService(&fakeCompleter{err: errors.New("groq down")})
	_, err := svc.Parse(context.Background(), "resume text")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedResume)
}

func TestParserService_EmptyText(t *testing.T) {
	llm := &fakeCompleter{}
	svc := NewParserService(llm)
	_, err := svc.Parse(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyResumeText)
	assert.Empty(t, llm.requests)
}

func TestResumeEmbeddingText(t *testing.T) {
	var parsed model.ParsedResume
	require.NoError(t, json.Unmarshal([]byte(sampleParsed), &parsed))

	text, err := ResumeEmbeddingText(&parsed)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace Go, Postgres Engineer, Babbage & Co BSc Mathematics, UCL Analytical Engine notes", text)

	_, err = ResumeEmbeddingText(&model.ParsedResume{Hobbies: json.RawMessage(`["chess"]`)})
	assert.ErrorIs(t, err, ErrEmptyEmbeddingText)
}
