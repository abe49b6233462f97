package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrNotFound = errors.New("record not found")
	ErrInvalid  = errors.New("invalid record")
)

// Limits for List.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// FeedbackRepository handles feedback persistence.
type FeedbackRepository struct {
	db  DB
	now func() time.Time
}

// NewFeedbackRepository creates a new feedback repository.
func NewFeedbackRepository(db DB) *FeedbackRepository {
	return &FeedbackRepository{db: db, now: time.Now}
}

// Validate trims the fields and checks the required ones.
func (f *Feedback) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Message = strings.TrimSpace(f.Message)

	switch {
	case f.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case f.Message == "":
		return fmt.Errorf("%w: message is required", ErrInvalid)
	case f.Email != "" && !strings.Contains(f.Email, "@"):
		return fmt.Errorf("%w: email %q is malformed", ErrInvalid, f.Email)
	}
	return nil
}

// Create stores a feedback entry, assigning its id and timestamp.
func (r *FeedbackRepository) Create(ctx context.Context, fb *Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	fb.CreatedAt = r.now().UTC()

	query := `
		INSERT INTO feedback (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		fb.ID.String(), fb.Name, fb.Email, fb.Message, fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// GetByID retrieves a feedback entry by ID.
func (r *FeedbackRepository) GetByID(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	query := `
		SELECT id, name, email, message, created_at
		FROM feedback WHERE id = $1
	`
	fb := &Feedback{}
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&fb.ID, &fb.Name, &fb.Email, &fb.Message, &fb.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feedback %s: %w", id, err)
	}
	return fb, nil
}

// List returns the most recent entries, newest first.
func (r *FeedbackRepository) List(ctx context.Context, limit int) ([]*Feedback, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT id, name, email, message, created_at
		FROM feedback
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []*Feedback
	for rows.Next() {
		fb := &Feedback{}
		if err := rows.Scan(&fb.ID, &fb.Name, &fb.Email, &fb.Message, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, fb)
	}
	return out, rows.Err()
}
