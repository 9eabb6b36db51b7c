package keywords

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vkravets/newspulse/internal/adapters/database"
	"github.com/vkravets/newspulse/pkg/models"
)

// Repository handles tracked keyword and subscription persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates new keyword repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Due returns the active keywords whose refresh expiry is unset or past
func (r *Repository) Due(ctx context.Context, now time.Time) ([]*models.Keyword, error) {
	list := make([]*models.Keyword, 0)
	err := r.db.DB().SelectContext(ctx, &list, `
		SELECT id, keyword, active, refresh_hours, expired_at, created_at
		FROM keywords
		WHERE active AND (expired_at IS NULL OR expired_at <= $1)
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due keywords: %w", err)
	}
	return list, nil
}

// Active returns all active keywords
func (r *Repository) Active(ctx context.Context) ([]*models.Keyword, error) {
	list := make([]*models.Keyword, 0)
	err := r.db.DB().SelectContext(ctx, &list, `
		SELECT id, keyword, active, refresh_hours, expired_at, created_at
		FROM keywords
		WHERE active
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active keywords: %w", err)
	}
	return list, nil
}

// Rearm sets the keyword's next eligible refresh time
func (r *Repository) Rearm(ctx context.Context, id int64, until time.Time) error {
	_, err := r.db.DB().ExecContext(ctx,
		`UPDATE keywords SET expired_at = $2 WHERE id = $1`, id, until)
	if err != nil {
		return fmt.Errorf("failed to rearm keyword: %w", err)
	}
	return nil
}

// GetByKeyword returns the tracked keyword row, or nil when untracked
func (r *Repository) GetByKeyword(ctx context.Context, keyword string) (*models.Keyword, error) {
	var kw models.Keyword
	err := r.db.DB().GetContext(ctx, &kw, `
		SELECT id, keyword, active, refresh_hours, expired_at, created_at
		FROM keywords
		WHERE keyword = $1
	`, keyword)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword: %w", err)
	}

	return &kw, nil
}

// Create inserts a new tracked keyword. On a concurrent insert of the same
// keyword the existing row is returned instead.
func (r *Repository) Create(ctx context.Context, keyword string, refreshHours int) (*models.Keyword, error) {
	var kw models.Keyword
	err := r.db.DB().GetContext(ctx, &kw, `
		INSERT INTO keywords (keyword, active, refresh_hours, created_at)
		VALUES ($1, true, $2, $3)
		ON CONFLICT (keyword) DO NOTHING
		RETURNING id, keyword, active, refresh_hours, expired_at, created_at
	`, keyword, refreshHours, time.Now().UTC())

	if err == sql.ErrNoRows {
		return r.GetByKeyword(ctx, keyword)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}

	return &kw, nil
}

// Delete removes the keyword; subscriptions cascade
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.DB().ExecContext(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return nil
}

// AddSubscription links a user to a keyword; duplicates are no-ops
func (r *Repository) AddSubscription(ctx context.Context, userID, keywordID int64) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO subscriptions (user_id, keyword_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, keyword_id) DO NOTHING
	`, userID, keywordID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add subscription: %w", err)
	}
	return nil
}

// RemoveSubscription unlinks a user from a keyword
func (r *Repository) RemoveSubscription(ctx context.Context, userID, keywordID int64) error {
	_, err := r.db.DB().ExecContext(ctx, `
		DELETE FROM subscriptions WHERE user_id = $1 AND keyword_id = $2
	`, userID, keywordID)
	if err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	return nil
}

// SubscriberCount returns how many users track the keyword
func (r *Repository) SubscriberCount(ctx context.Context, keywordID int64) (int, error) {
	var count int
	err := r.db.DB().QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE keyword_id = $1`, keywordID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}
