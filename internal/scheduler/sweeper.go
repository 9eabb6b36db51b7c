package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// KeywordSource exposes the due-keyword state machine
type KeywordSource interface {
	Due(ctx context.Context, now time.Time) ([]*models.Keyword, error)
	Rearm(ctx context.Context, id int64, until time.Time) error
}

// Dispatcher enqueues scrape work; the sweep itself never touches
// external services
type Dispatcher interface {
	EnqueueScrapeLatest(ctx context.Context, keyword string) error
}

// Lock elects a single sweeping instance per cycle
type Lock interface {
	TryAcquire(ctx context.Context) bool
	Release(ctx context.Context)
}

// Sweeper dispatches one scrape-latest unit per due keyword and re-arms
// its expiry. It implements pkg/worker.Worker and is driven on a fixed
// cadence by the worker group.
type Sweeper struct {
	keywords   KeywordSource
	dispatcher Dispatcher
	lock       Lock
	now        func() time.Time
}

// NewSweeper creates new keyword sweeper. lock may be nil in single
// instance deployments.
func NewSweeper(keywords KeywordSource, dispatcher Dispatcher, lock Lock) *Sweeper {
	return &Sweeper{
		keywords:   keywords,
		dispatcher: dispatcher,
		lock:       lock,
		now:        time.Now,
	}
}

// Name implements worker.Worker
func (s *Sweeper) Name() string {
	return "keyword-sweeper"
}

// Run executes one sweep: every due keyword is dispatched exactly once and
// transitioned to armed with expiry = sweep time + its refresh cadence.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.lock != nil {
		if !s.lock.TryAcquire(ctx) {
			return nil
		}
		defer s.lock.Release(ctx)
	}

	now := s.now().UTC()

	due, err := s.keywords.Due(ctx, now)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	logger.Debug("sweep found due keywords",
		zap.Int("count", len(due)),
	)

	for _, kw := range due {
		if err := s.dispatcher.EnqueueScrapeLatest(ctx, kw.Keyword); err != nil {
			// Leave the keyword due so the next sweep picks it up again
			logger.Error("failed to dispatch scrape",
				zap.String("keyword", kw.Keyword),
				zap.Error(err),
			)
			continue
		}

		until := now.Add(time.Duration(kw.RefreshHours) * time.Hour)
		if err := s.keywords.Rearm(ctx, kw.ID, until); err != nil {
			logger.Error("failed to rearm keyword",
				zap.String("keyword", kw.Keyword),
				zap.Error(err),
			)
		}
	}

	return nil
}
