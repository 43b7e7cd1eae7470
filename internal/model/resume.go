package model

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ResumeKind tags which shape a stored resume_info value has.
type ResumeKind int

const (
	ResumeEmpty ResumeKind = iota
	ResumeRawPath
	ResumeStructured
)

func (k ResumeKind) String() string {
	switch k {
	case ResumeRawPath:
		return "raw_path"
	case ResumeStructured:
		return "structured"
	default:
		return "empty"
	}
}

// ParsedResume holds the fields extracted by the resume parser. Values are
// kept as raw JSON since the model is free to return strings, lists or objects.
type ParsedResume struct {
	FullName         json.RawMessage `json:"full_name,omitempty"`
	Email            json.RawMessage `json:"email,omitempty"`
	PhoneNumber      json.RawMessage `json:"phone_number,omitempty"`
	GithubPortfolio  json.RawMessage `json:"github_portfolio,omitempty"`
	LinkedinID       json.RawMessage `json:"linkedin_id,omitempty"`
	CurrentLocation  json.RawMessage `json:"current_location,omitempty"`
	EducationDetails json.RawMessage `json:"education_details,omitempty"`
	Internships      json.RawMessage `json:"internships,omitempty"`
	Projects         json.RawMessage `json:"projects,omitempty"`
	WorkExperience   json.RawMessage `json:"work_experience,omitempty"`
	Certifications   json.RawMessage `json:"certifications,omitempty"`
	Achievements     json.RawMessage `json:"achievements,omitempty"`
	LanguagesKnown   json.RawMessage `json:"languages_known,omitempty"`
	Hobbies          json.RawMessage `json:"hobbies,omitempty"`
	References       json.RawMessage `json:"references,omitempty"`
	TechnicalSkills  json.RawMessage `json:"technical_skills,omitempty"`
	SoftSkills       json.RawMessage `json:"soft_skills,omitempty"`
}

// ResumeFields lists the keys the parser is asked to produce, in prompt order.
var ResumeFields = []string{
	"full_name",
	"email",
	"phone_number",
	"github_portfolio",
	"linkedin_id",
	"current_location",
	"education_details",
	"internships",
	"projects",
	"work_experience",
	"certifications",
	"achievements",
	"languages_known",
	"hobbies",
	"references",
	"technical_skills",
	"soft_skills",
}

// EmbeddingFields are concatenated, in order, to build the resume embedding input.
var EmbeddingFields = []string{
	"full_name",
	"technical_skills",
	"work_experience",
	"education_details",
	"projects",
}

// StructuredResume is the final persisted form of a processed resume.
type StructuredResume struct {
	ParsedData json.RawMessage `json:"parsed_data"`
	ChangeTime time.Time       `json:"change_time"`
	Vector     []float32       `json:"vector"`
}

// ResumeInfo is the tagged union stored in users.resume_info.
type ResumeInfo struct {
	Kind       ResumeKind
	Path       string
	Structured *StructuredResume
}

// Usable reports whether the resume can drive vector matching.
func (r ResumeInfo) Usable() bool {
	return r.Kind == ResumeStructured && r.Structured != nil && len(r.Structured.Vector) > 0
}

func EmptyResume() ResumeInfo { return ResumeInfo{Kind: ResumeEmpty} }

func RawPathResume(path string) ResumeInfo {
	return ResumeInfo{Kind: ResumeRawPath, Path: path}
}

func StructuredResumeInfo(s *StructuredResume) ResumeInfo {
	return ResumeInfo{Kind: ResumeStructured, Structured: s}
}

// ParseResumeInfo decodes a stored resume_info column. It never fails:
// values that are not a structured document degrade to RawPath or Empty.
func ParseResumeInfo(raw *string) ResumeInfo {
	if raw == nil {
		return EmptyResume()
	}
	s := strings.TrimSpace(*raw)
	switch s {
	case "", "None", "null", `"None"`, `""`:
		return EmptyResume()
	}

	data := []byte(s)
	switch {
	case bytes.HasPrefix(data, []byte("{")):
		var doc StructuredResume
		if err := json.Unmarshal(data, &doc); err != nil || len(doc.ParsedData) == 0 {
			return EmptyResume()
		}
		return StructuredResumeInfo(&doc)
	case bytes.HasPrefix(data, []byte(`"`)):
		var path string
		if err := json.Unmarshal(data, &path); err != nil || path == "" {
			return EmptyResume()
		}
		return RawPathResume(path)
	default:
		return RawPathResume(s)
	}
}

// Encode renders the value for the resume_info column. Empty encodes to nil.
func (r ResumeInfo) Encode() (*string, error) {
	switch r.Kind {
	case ResumeRawPath:
		b, err := json.Marshal(r.Path)
		if err != nil {
			return nil, err
		}
		s := string(b)
		return &s, nil
	case ResumeStructured:
		b, err := json.Marshal(r.Structured)
		if err != nil {
			return nil, err
		}
		s := string(b)
		return &s, nil
	default:
		return nil, nil
	}
}
