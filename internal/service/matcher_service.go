package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"

	"github.com/intellijobs/api/internal/model"
)

const (
	MessageResumeNotProcessed = "Resume not processed yet"
	MessageUserNotFound       = "User not found"

	defaultRecommendLimit = 10
)

// MatcherService recommends listings closest to the user's resume vector.
type MatcherService struct {
	users   UserStore
	index   VectorIndex
	jobs    JobStore
	slack   int
	maxTopK int
}

func NewMatcherService(users UserStore, index VectorIndex, jobs JobStore, slack, maxTopK int) *MatcherService {
	if slack < 0 {
		slack = 0
	}
	if maxTopK <= 0 {
		maxTopK = 100
	}
	return &MatcherService{
		users:   users,
		index:   index,
		jobs:    jobs,
		slack:   slack,
		maxTopK: maxTopK,
	}
}

// Recommend returns one page of listings. A user without a usable resume
// gets an empty page and a message rather than an error.
func (s *MatcherService) Recommend(ctx context.Context, userID string, page, limit int, filters model.RecommendFilters) (*model.RecommendResponse, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultRecommendLimit
	}

	info, err := s.users.GetResumeInfo(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return emptyRecommendation(page, MessageUserNotFound), nil
	}
	if err != nil {
		return nil, err
	}
	if !info.Usable() {
		return emptyRecommendation(page, MessageResumeNotProcessed), nil
	}

	// A page can never reach past maxTopK matches, so clamp before
	// multiplying to keep the window arithmetic from overflowing.
	if limit > s.maxTopK {
		limit = s.maxTopK
	}
	offset := s.maxTopK + 1
	if page-1 <= s.maxTopK/limit {
		offset = (page - 1) * limit
	}
	topK := offset + limit + s.slack
	if topK > s.maxTopK {
		topK = s.maxTopK
	}

	matches, err := s.index.Search(ctx, info.Structured.Vector, topK, model.VectorFilter{
		Skills: filters.Skills,
		Remote: filters.Remote,
	})
	if err != nil {
		return nil, err
	}

	// hasMore looks at the raw match count, before documents are joined
	// and salaries filtered.
	resp := &model.RecommendResponse{
		Jobs:    []model.RecommendedJob{},
		HasMore: len(matches) > offset+limit,
		Total:   len(matches),
		Page:    page,
	}
	if offset >= len(matches) {
		return resp, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	window := matches[offset:end]

	scores := make(map[int64]float64, len(window))
	ids := make([]int64, 0, len(window))
	for _, m := range window {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			log.Printf("Recommend %s: skipping non-numeric job id %q", userID, m.ID)
			continue
		}
		if _, dup := scores[id]; dup {
			continue
		}
		scores[id] = m.Score
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return resp, nil
	}

	docs, err := s.jobs.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		doc, ok := docs[id]
		if !ok {
			continue
		}
		if !salaryInRange(doc.Salary, filters.MinSalary, filters.MaxSalary) {
			continue
		}
		resp.Jobs = append(resp.Jobs, model.RecommendedJob{JobListing: doc, Score: scores[id]})
	}

	sort.SliceStable(resp.Jobs, func(i, j int) bool {
		return resp.Jobs[i].Score > resp.Jobs[j].Score
	})
	return resp, nil
}

func emptyRecommendation(page int, message string) *model.RecommendResponse {
	return &model.RecommendResponse{
		Jobs:    []model.RecommendedJob{},
		HasMore: false,
		Total:   0,
		Page:    page,
		Message: message,
	}
}
