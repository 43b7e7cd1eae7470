package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intellijobs/api/internal/model"
)

// ErrUserNotFound is returned when no users row exists for the id.
var ErrUserNotFound = errors.New("user not found")

// UserRepository persists the users table. Every write is an unconditional
// overwrite of the column it touches; concurrent writers are last-write-wins.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Insert creates the user row and reports whether it did not exist before.
func (r *UserRepository) Insert(ctx context.Context, userID string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return false, fmt.Errorf("inserting user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) GetResumeInfo(ctx context.Context, userID string) (model.ResumeInfo, error) {
	var raw *string
	err := r.pool.QueryRow(ctx,
		`SELECT resume_info FROM users WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EmptyResume(), ErrUserNotFound
	}
	if err != nil {
		return model.EmptyResume(), fmt.Errorf("loading resume info: %w", err)
	}
	return model.ParseResumeInfo(raw), nil
}

// SaveResumeInfo upserts resume_info as a single write.
func (r *UserRepository) SaveResumeInfo(ctx context.Context, userID string, info model.ResumeInfo) error {
	encoded, err := info.Encode()
	if err != nil {
		return fmt.Errorf("encoding resume info: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (user_id, resume_info) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET resume_info = EXCLUDED.resume_info`,
		userID, encoded,
	)
	if err != nil {
		return fmt.Errorf("saving resume info: %w", err)
	}
	return nil
}

// GetJobStats returns the stored stats, or empty sets when the user or the
// column is missing.
func (r *UserRepository) GetJobStats(ctx context.Context, userID string) (model.JobStats, error) {
	var raw *string
	err := r.pool.QueryRow(ctx,
		`SELECT jobstats FROM users WHERE user_id = $1`, userID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.NewJobStats(), nil
	}
	if err != nil {
		return model.JobStats{}, fmt.Errorf("loading jobstats: %w", err)
	}
	return model.ParseJobStats(raw), nil
}

func (r *UserRepository) SaveJobStats(ctx context.Context, userID string, stats model.JobStats) error {
	encoded, err := stats.Encode()
	if err != nil {
		return fmt.Errorf("encoding jobstats: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (user_id, jobstats) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET jobstats = EXCLUDED.jobstats`,
		userID, encoded,
	)
	if err != nil {
		return fmt.Errorf("saving jobstats: %w", err)
	}
	return nil
}

// AppendConversation adds one snapshot to users.chatbot_conversations.
func (r *UserRepository) AppendConversation(ctx context.Context, userID string, rec model.ConversationRecord) error {
	data, err := json.Marshal([]model.ConversationRecord{rec})
	if err != nil {
		return fmt.Errorf("encoding conversation: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO users (user_id, chatbot_conversations) VALUES ($1, $2::jsonb)
		 ON CONFLICT (user_id) DO UPDATE
		 SET chatbot_conversations = COALESCE(users.chatbot_conversations, '[]'::jsonb) || EXCLUDED.chatbot_conversations`,
		userID, string(data),
	)
	if err != nil {
		return fmt.Errorf("appending conversation: %w", err)
	}
	return nil
}

// FindConversation returns the latest mirrored snapshot of a conversation,
// or nil when no user has one.
func (r *UserRepository) FindConversation(ctx context.Context, conversationID string) (*model.ConversationRecord, error) {
	needle, err := json.Marshal([]map[string]string{{"conversation_id": conversationID}})
	if err != nil {
		return nil, err
	}

	var data []byte
	err = r.pool.QueryRow(ctx,
		`SELECT elem
		   FROM users, jsonb_array_elements(chatbot_conversations) AS elem
		  WHERE chatbot_conversations @> $1::jsonb
		    AND elem->>'conversation_id' = $2
		  ORDER BY (elem->>'change_time')::timestamptz DESC
		  LIMIT 1`,
		string(needle), conversationID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding conversation: %w", err)
	}

	var rec model.ConversationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return &rec, nil
}
