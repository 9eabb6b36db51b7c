package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
)

// TrendPoint is one resampled daily sentiment value for a keyword
type TrendPoint struct {
	Day      time.Time
	Keyword  string
	Score    float64
	Smoothed float64
	Samples  int
}

// Repository writes trend snapshots to ClickHouse for long-term analytics
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new ClickHouse trend repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the trend table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS sentiment_trends (
			day Date,
			keyword String,
			score Float64,
			smoothed Float64,
			samples UInt32,
			snapshot_at DateTime
		) ENGINE = ReplacingMergeTree(snapshot_at)
		ORDER BY (keyword, day)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sentiment_trends table: %w", err)
	}
	return nil
}

// SaveTrendPoints saves one keyword's daily trend line
func (r *Repository) SaveTrendPoints(ctx context.Context, points []TrendPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	stmt, err := tx.Preparex(`
		INSERT INTO sentiment_trends
		(day, keyword, score, smoothed, samples, snapshot_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	snapshotAt := time.Now().UTC()
	for _, p := range points {
		_, err = stmt.ExecContext(ctx,
			p.Day,
			p.Keyword,
			p.Score,
			p.Smoothed,
			uint32(p.Samples),
			snapshotAt,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert trend point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	logger.Debug("saved trend points to ClickHouse",
		zap.Int("count", len(points)),
	)

	return nil
}
