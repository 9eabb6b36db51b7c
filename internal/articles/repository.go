package articles

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/database"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// Repository handles article persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates new article repository
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// InsertNew stores the candidates that are not in the store yet and returns
// the accepted fingerprints. The unique index on uid is the dedup authority:
// a conflicting row is skipped silently, so overlapping scrape runs for the
// same keyword cannot create duplicates.
func (r *Repository) InsertNew(ctx context.Context, candidates []*models.Article) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO articles (uid, url, title, snippet, source, published_at, sentiment_reports, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (uid) DO NOTHING
		RETURNING uid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	accepted := make([]string, 0, len(candidates))
	for _, a := range candidates {
		var uid string
		err := stmt.QueryRowContext(ctx,
			a.UID,
			a.URL,
			a.Title,
			a.Snippet,
			a.Source,
			a.PublishedAt,
			a.Reports,
			time.Now().UTC(),
		).Scan(&uid)

		if err == sql.ErrNoRows {
			// Duplicate fingerprint, expected under concurrent scrapes
			continue
		}
		if err != nil {
			logger.Warn("failed to insert article",
				zap.String("uid", a.UID),
				zap.Error(err),
			)
			continue
		}
		accepted = append(accepted, uid)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	logger.Debug("stored new articles",
		zap.Int("candidates", len(candidates)),
		zap.Int("accepted", len(accepted)),
	)

	return accepted, nil
}

// Exists reports whether an article with the fingerprint is stored
func (r *Repository) Exists(ctx context.Context, uid string) (bool, error) {
	var exists bool
	err := r.db.DB().QueryRowxContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM articles WHERE uid = $1)`, uid,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return exists, nil
}

// GetByUID returns the article with the fingerprint, or nil when it is gone
func (r *Repository) GetByUID(ctx context.Context, uid string) (*models.Article, error) {
	var article models.Article
	err := r.db.DB().GetContext(ctx, &article, `
		SELECT id, uid, url, title, snippet, source, published_at, sentiment_reports, created_at
		FROM articles
		WHERE uid = $1
	`, uid)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return &article, nil
}

// AppendReport prepends a sentiment report to the article's history in a
// single UPDATE. The jsonb rewrite happens server side, so concurrent
// appends for the same article serialize on the row and cannot lose a
// sibling report.
func (r *Repository) AppendReport(ctx context.Context, uid string, report models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	result, err := r.db.DB().ExecContext(ctx, `
		UPDATE articles
		SET sentiment_reports = CASE
			WHEN sentiment_reports IS NULL THEN
				jsonb_build_object('version', 1, 'reports', jsonb_build_array($2::jsonb))
			ELSE
				jsonb_set(
					sentiment_reports,
					'{reports}',
					jsonb_build_array($2::jsonb) || (sentiment_reports->'reports')
				)
		END
		WHERE uid = $1
	`, uid, payload)
	if err != nil {
		return fmt.Errorf("failed to append report: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("article %s not found", uid)
	}

	return nil
}

// ListByHeadKeyword returns the articles whose most recent report targets
// the keyword, oldest first, optionally bounded by a published-at cutoff
func (r *Repository) ListByHeadKeyword(ctx context.Context, keyword string, since *time.Time) ([]*models.Article, error) {
	builder := sq.Select(
		"id", "uid", "url", "title", "snippet", "source",
		"published_at", "sentiment_reports", "created_at",
	).
		From("articles").
		Where("sentiment_reports->'reports'->0->>'target_keyword' = ?", keyword).
		OrderBy("published_at ASC").
		PlaceholderFormat(sq.Dollar)

	if since != nil {
		builder = builder.Where(sq.GtOrEq{"published_at": *since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	list := make([]*models.Article, 0)
	if err := r.db.DB().SelectContext(ctx, &list, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return list, nil
}
