package model

import (
	"encoding/json"
	"strings"
)

// JobAction is a mutation of a user's saved/applied sets.
type JobAction string

const (
	ActionSave    JobAction = "save"
	ActionUnsave  JobAction = "unsave"
	ActionApply   JobAction = "apply"
	ActionUnapply JobAction = "unapply"
)

func (a JobAction) Valid() bool {
	switch a {
	case ActionSave, ActionUnsave, ActionApply, ActionUnapply:
		return true
	}
	return false
}

// JobStats is stored in users.jobstats. Both lists are ordered and unique.
type JobStats struct {
	Saved   []string `json:"saved"`
	Applied []string `json:"applied"`
}

type JobCounts struct {
	Saved   int `json:"saved"`
	Applied int `json:"applied"`
}

func NewJobStats() JobStats {
	return JobStats{Saved: []string{}, Applied: []string{}}
}

// ParseJobStats decodes the jobstats column, falling back to empty sets
// when the value is absent or malformed.
func ParseJobStats(raw *string) JobStats {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return NewJobStats()
	}
	var stats JobStats
	if err := json.Unmarshal([]byte(*raw), &stats); err != nil {
		return NewJobStats()
	}
	stats.Saved = dedupe(stats.Saved)
	stats.Applied = dedupe(stats.Applied)
	return stats
}

// Apply mutates the stats in place. Adding a present id or removing an
// absent id is a no-op.
func (s *JobStats) Apply(action JobAction, jobID string) {
	switch action {
	case ActionSave:
		s.Saved = addID(s.Saved, jobID)
	case ActionUnsave:
		s.Saved = removeID(s.Saved, jobID)
	case ActionApply:
		s.Applied = addID(s.Applied, jobID)
	case ActionUnapply:
		s.Applied = removeID(s.Applied, jobID)
	}
}

func (s JobStats) Counts() JobCounts {
	return JobCounts{Saved: len(s.Saved), Applied: len(s.Applied)}
}

func (s JobStats) Encode() (string, error) {
	if s.Saved == nil {
		s.Saved = []string{}
	}
	if s.Applied == nil {
		s.Applied = []string{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func addID(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
