package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/intellijobs/api/internal/model"
)

// VectorRepository queries the job listing vector index.
type VectorRepository struct {
	pool *pgxpool.Pool
}

func NewVectorRepository(pool *pgxpool.Pool) *VectorRepository {
	return &VectorRepository{pool: pool}
}

// Search returns up to topK listings nearest to embedding by cosine
// similarity, best first.
func (r *VectorRepository) Search(ctx context.Context, embedding []float32, topK int, filter model.VectorFilter) ([]model.VectorMatch, error) {
	args := []interface{}{pgvector.NewVector(embedding)}
	var where []string

	if len(filter.Skills) > 0 {
		args = append(args, filter.Skills)
		where = append(where, fmt.Sprintf("skills && $%d::text[]", len(args)))
	}
	if filter.Remote != nil {
		args = append(args, *filter.Remote)
		where = append(where, fmt.Sprintf("remote = $%d", len(args)))
	}

	query := `SELECT job_id, 1 - (embedding <=> $1) AS score, description FROM job_vectors`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, topK)
	query += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching job vectors: %w", err)
	}
	defer rows.Close()

	var matches []model.VectorMatch
	for rows.Next() {
		var m model.VectorMatch
		if err := rows.Scan(&m.ID, &m.Score, &m.Description); err != nil {
			return nil, fmt.Errorf("scanning job vector: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
