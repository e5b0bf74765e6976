package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/notechat/internal/apperr"
	"github.com/starford/notechat/internal/models"
)

const noteColumns = `id, owner_id, title, content, completed, is_deleted, created_at, last_modified`

func scanNote(row interface{ Scan(...any) error }) (models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.OwnerID, &n.Title, &n.Content, &n.Completed, &n.IsDeleted, &n.CreatedAt, &n.LastModified)
	return n, err
}

func listWhere(owner string, opts ListOptions) (string, []any) {
	where := `owner_id = ? AND is_deleted = ?`
	args := []any{owner, opts.Deleted}
	if opts.Completed != nil {
		where += ` AND completed = ?`
		args = append(args, *opts.Completed)
	}
	return where, args
}

// List returns the owner's notes in one partition.
func (db *DB) List(ctx context.Context, owner string, opts ListOptions) ([]models.Note, error) {
	where, args := listWhere(owner, opts)
	order := `created_at DESC, rowid DESC`
	if opts.Sort == SortModified {
		order = `last_modified DESC, rowid DESC`
	}
	query := `SELECT ` + noteColumns + ` FROM notes WHERE ` + where + ` ORDER BY ` + order
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Count returns how many of the owner's notes match opts.
func (db *DB) Count(ctx context.Context, owner string, opts ListOptions) (int, error) {
	where, args := listWhere(owner, opts)
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM notes WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count notes: %w", err)
	}
	return n, nil
}

// Get returns one note regardless of its deleted flag.
func (db *DB) Get(ctx context.Context, owner, id string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND owner_id = ?`, id, owner)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get note: %w", err)
	}
	return &n, nil
}

// Insert creates a live note. Title is required; Completed defaults to false.
func (db *DB) Insert(ctx context.Context, owner string, f NoteFields) (*models.Note, error) {
	if f.Title == nil {
		return nil, fmt.Errorf("storage: insert note: %w", apperr.ErrInvalidTitle)
	}
	now := db.timestamp()
	n := models.Note{
		ID:           uuid.NewString(),
		OwnerID:      owner,
		Title:        *f.Title,
		CreatedAt:    now,
		LastModified: now,
	}
	if f.Content != nil {
		n.Content = *f.Content
	}
	if f.Completed != nil {
		n.Completed = *f.Completed
	}

	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)
	`, n.ID, n.OwnerID, n.Title, n.Content, n.Completed, n.CreatedAt, n.LastModified)
	if err != nil {
		return nil, fmt.Errorf("storage: insert note: %w", err)
	}
	return &n, nil
}

// Update applies the non-nil fields to a live note.
func (db *DB) Update(ctx context.Context, owner, id string, f NoteFields) error {
	sets := []string{`last_modified = ?`}
	args := []any{db.timestamp()}
	if f.Title != nil {
		sets = append(sets, `title = ?`)
		args = append(args, *f.Title)
	}
	if f.Content != nil {
		sets = append(sets, `content = ?`)
		args = append(args, *f.Content)
	}
	if f.Completed != nil {
		sets = append(sets, `completed = ?`)
		args = append(args, *f.Completed)
	}
	args = append(args, id, owner)

	res, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET `+strings.Join(sets, ", ")+` WHERE id = ? AND owner_id = ? AND is_deleted = 0`, args...)
	if err != nil {
		return fmt.Errorf("storage: update note: %w", err)
	}
	return expectRow(res, "update note")
}

// SoftDelete flags a live note as deleted.
func (db *DB) SoftDelete(ctx context.Context, owner, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET is_deleted = 1, last_modified = ? WHERE id = ? AND owner_id = ? AND is_deleted = 0`,
		db.timestamp(), id, owner)
	if err != nil {
		return fmt.Errorf("storage: delete note: %w", err)
	}
	return expectRow(res, "delete note")
}

// SoftDeleteAll flags every live note of the owner as deleted and returns how many changed.
func (db *DB) SoftDeleteAll(ctx context.Context, owner string) (int, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET is_deleted = 1, last_modified = ? WHERE owner_id = ? AND is_deleted = 0`,
		db.timestamp(), owner)
	if err != nil {
		return 0, fmt.Errorf("storage: delete all notes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: delete all notes: %w", err)
	}
	return int(n), nil
}

// Restore clears the deleted flag of a soft-deleted note.
func (db *DB) Restore(ctx context.Context, owner, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE notes SET is_deleted = 0, last_modified = ? WHERE id = ? AND owner_id = ? AND is_deleted = 1`,
		db.timestamp(), id, owner)
	if err != nil {
		return fmt.Errorf("storage: restore note: %w", err)
	}
	return expectRow(res, "restore note")
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: %s: %w", op, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
