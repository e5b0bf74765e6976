package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/starford/notechat/internal/models"
)

// AppendMessage stores a chat message, assigning its id and timestamp.
func (db *DB) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = uuid.NewString()
	msg.CreatedAt = db.timestamp()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO chat_messages (id, owner_id, role, content, pending, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.OwnerID, msg.Role, msg.Content, msg.Pending, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("storage: append message: %w", err)
	}
	return nil
}

// RecentMessages returns the owner's last limit messages, oldest first.
// A non-positive limit returns the whole history.
func (db *DB) RecentMessages(ctx context.Context, owner string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, owner_id, role, content, pending, created_at
		FROM chat_messages
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: recent messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Role, &m.Content, &m.Pending, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// GetUsage returns the owner's counters for day, zero-valued when absent.
func (db *DB) GetUsage(ctx context.Context, owner, day string) (models.Usage, error) {
	u := models.Usage{OwnerID: owner, Day: day}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT message_count, token_count FROM ai_usage WHERE owner_id = ? AND day = ?`, owner, day)
	if err != nil {
		return u, fmt.Errorf("storage: get usage: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&u.MessageCount, &u.TokenCount); err != nil {
			return u, fmt.Errorf("storage: scan usage: %w", err)
		}
	}
	return u, rows.Err()
}

// AddUsage increments the owner's counters for day.
func (db *DB) AddUsage(ctx context.Context, owner, day string, messages, tokens int) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO ai_usage (owner_id, day, message_count, token_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, day) DO UPDATE SET
			message_count = message_count + excluded.message_count,
			token_count   = token_count + excluded.token_count
	`, owner, day, messages, tokens)
	if err != nil {
		return fmt.Errorf("storage: add usage: %w", err)
	}
	return nil
}
