package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/murmur/murmur/internal/model"
)

// ErrUnknownOwner is returned when a transcription references a missing user.
var ErrUnknownOwner = errors.New("transcription owner does not exist")

// foreignKeyViolation is the PostgreSQL SQLSTATE for foreign_key_violation.
const foreignKeyViolation = "23503"

// CreateTranscription appends a record. CreatedAt is assigned by the database.
func (r *Repository) CreateTranscription(ctx context.Context, t *model.Transcription) error {
	query := `
		INSERT INTO transcriptions (id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query, t.ID, t.UserID, t.Text).Scan(&t.CreatedAt)
	if err != nil {
		if hasCode(err, foreignKeyViolation) {
			return ErrUnknownOwner
		}
		return fmt.Errorf("failed to create transcription: %w", err)
	}

	return nil
}

// ListTranscriptionsByUser returns every record owned by userID, newest first.
// The result is never nil.
func (r *Repository) ListTranscriptionsByUser(ctx context.Context, userID string) ([]*model.Transcription, error) {
	query := `
		SELECT id, user_id, text, created_at
		FROM transcriptions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcriptions: %w", err)
	}
	defer rows.Close()

	records := make([]*model.Transcription, 0)
	for rows.Next() {
		var t model.Transcription
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcription: %w", err)
		}
		records = append(records, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcriptions: %w", err)
	}

	return records, nil
}
