package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/model"
)

const parserPrompt = `You are a professional resume parser. You are given the text of a resume and must extract the following information:
1. full name (key "full_name")
2. email id (key "email")
3. phone number (key "phone_number")
4. github portfolio (key "github_portfolio")
5. linkedin id (key "linkedin_id")
6. current location (key "current_location")
7. education details (key "education_details")
8. internships (key "internships")
9. projects (key "projects")
10. work experience (key "work_experience")
11. certifications (key "certifications")
12. achievements (key "achievements")
13. languages known (key "languages_known")
14. hobbies (key "hobbies")
15. references (key "references")
16. technical skills (key "technical_skills")
17. soft skills (key "soft_skills")
Use null for anything the resume does not mention.
Respond with exactly one JSON object using those keys. Do not wrap it in markdown fences and do not add any other text.`

// ParserService turns resume text into the structured field set.
type ParserService struct {
	llm client.Completer
}

func NewParserService(llm client.Completer) *ParserService {
	return &ParserService{llm: llm}
}

// Parse sends the full text to the model. Anything other than a bare JSON
// object is a parse failure.
func (s *ParserService) Parse(ctx context.Context, text string) (*model.ParsedResume, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResumeText
	}

	out, err := s.llm.Complete(ctx, client.CompletionRequest{
		Messages: []client.ChatMessage{
			{Role: "system", Content: parserPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, fmt.Errorf("resume parser call failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if !gjson.Valid(out) || !gjson.Parse(out).IsObject() {
		return nil, ErrMalformedResume
	}

	var parsed model.ParsedResume
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResume, err)
	}
	return &parsed, nil
}

// ResumeEmbeddingText concatenates the fields that drive matching into one
// string. Nested lists and objects are flattened to their scalar values.
func ResumeEmbeddingText(parsed *model.ParsedResume) (string, error) {
	data, err := json.Marshal(parsed)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, field := range model.EmbeddingFields {
		var values []string
		flatten(gjson.GetBytes(data, field), &values)
		if len(values) > 0 {
			parts = append(parts, strings.Join(values, ", "))
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyEmbeddingText
	}
	return strings.Join(parts, " "), nil
}

func flatten(r gjson.Result, out *[]string) {
	switch {
	case !r.Exists() || r.Type == gjson.Null:
		return
	case r.IsArray() || r.IsObject():
		r.ForEach(func(_, v gjson.Result) bool {
			flatten(v, out)
			return true
		})
	default:
		if s := strings.TrimSpace(r.String()); s != "" {
			*out = append(*out, s)
		}
	}
}
