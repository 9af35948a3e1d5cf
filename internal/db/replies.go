package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nagato/internal/models"
)

// LastRepliedStatusID returns the highest status ID the bot has replied to.
func (d *DB) LastRepliedStatusID(ctx context.Context) (string, error) {
	query := `
		SELECT status_id FROM replies
		ORDER BY length(status_id) DESC, status_id DESC
		LIMIT 1
	`

	var id string
	err := d.Pool.QueryRow(ctx, query).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoReplies
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last reply: %w", err)
	}
	return id, nil
}

// RecordReply stores a sent reply. Recording the same status twice is a no-op.
func (d *DB) RecordReply(ctx context.Context, rec models.ReplyRecord) error {
	query := `
		INSERT INTO replies (status_id, user_id, intent, text, url, replied_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (status_id) DO NOTHING
	`

	_, err := d.Pool.Exec(ctx, query,
		rec.StatusID,
		rec.UserID,
		string(rec.Intent),
		rec.Text,
		rec.URL,
		rec.RepliedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record reply to %s: %w", rec.StatusID, err)
	}
	return nil
}

// RecentReplies returns up to limit replies, newest status first.
func (d *DB) RecentReplies(ctx context.Context, limit int) ([]models.ReplyRecord, error) {
	query := `
		SELECT status_id, user_id, intent, text, url, replied_at
		FROM replies
		ORDER BY length(status_id) DESC, status_id DESC
		LIMIT $1
	`

	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies: %w", err)
	}
	defer rows.Close()

	var replies []models.ReplyRecord
	for rows.Next() {
		var rec models.ReplyRecord
		var intent string
		if err := rows.Scan(&rec.StatusID, &rec.UserID, &intent, &rec.Text, &rec.URL, &rec.RepliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reply: %w", err)
		}
		rec.Intent = models.Intent(intent)
		replies = append(replies, rec)
	}
	return replies, rows.Err()
}
