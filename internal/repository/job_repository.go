package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/intellijobs/api/internal/model"
)

// JobRepository reads full job documents.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// FindByIDs returns the documents that exist for ids, keyed by job id.
func (r *JobRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.JobListing, error) {
	out := make(map[int64]model.JobListing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var jobs []model.JobListing
	if err := r.db.WithContext(ctx).Where("job_id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("loading job listings: %w", err)
	}
	for _, j := range jobs {
		out[j.JobID] = j
	}
	return out, nil
}
