package model

import (
	"time"

	"gorm.io/datatypes"
)

// JobListing is a full job document written by the scraper. Read-only here.
type JobListing struct {
	JobID       int64          `gorm:"column:job_id;primaryKey" json:"job_id"`
	Title       string         `json:"title"`
	CompanyName string         `json:"company_name"`
	Description string         `json:"description"`
	Locations   datatypes.JSON `gorm:"type:jsonb" json:"locations"`
	Keywords    datatypes.JSON `gorm:"type:jsonb" json:"keywords"`
	Experience  string         `json:"experience"`
	Salary      string         `json:"salary"`
	Rating      float64        `json:"rating"`
	ReviewCount int            `json:"review_count"`
	Remote      bool           `json:"remote"`
	URL         string         `json:"url,omitempty"`
	PostedAt    *time.Time     `json:"posted_at,omitempty"`
}

func (JobListing) TableName() string {
	return "job_listings"
}

// VectorMatch is one hit from the vector index.
type VectorMatch struct {
	ID          string  `json:"id"`
	Score       float64 `json:"score"`
	Description string  `json:"description"`
}

// VectorFilter narrows a nearest-neighbour query by listing metadata.
type VectorFilter struct {
	Skills []string
	Remote *bool
}

// RecommendFilters are the query filters of /api/recommended-jobs
type RecommendFilters struct {
	Skills    []string
	Remote    *bool
	MinSalary float64
	MaxSalary float64
}

// RecommendedJob is a listing decorated with its similarity score.
type RecommendedJob struct {
	JobListing
	Score float64 `json:"score"`
}

// RecommendResponse is returned by GET /api/recommended-jobs
type RecommendResponse struct {
	Jobs    []RecommendedJob `json:"jobs"`
	HasMore bool             `json:"hasMore"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	Message string           `json:"message,omitempty"`
}
