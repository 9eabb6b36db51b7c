package keywords

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// Backfiller enqueues the one-time historic scrape for a new keyword
type Backfiller interface {
	EnqueueScrapeHistoric(ctx context.Context, keyword string) error
}

// KeywordStore is the persistence surface the service needs
type KeywordStore interface {
	GetByKeyword(ctx context.Context, keyword string) (*models.Keyword, error)
	Create(ctx context.Context, keyword string, refreshHours int) (*models.Keyword, error)
	Delete(ctx context.Context, id int64) error
	AddSubscription(ctx context.Context, userID, keywordID int64) error
	RemoveSubscription(ctx context.Context, userID, keywordID int64) error
	SubscriberCount(ctx context.Context, keywordID int64) (int, error)
}

// Service owns the keyword lifecycle: a keyword comes alive with its first
// subscriber (triggering a historic backfill) and dies with its last one.
// These are explicit hooks invoked by the subscription management layer.
type Service struct {
	store               KeywordStore
	backfiller          Backfiller
	defaultRefreshHours int
}

// NewService creates new keyword subscription service
func NewService(store KeywordStore, backfiller Backfiller, defaultRefreshHours int) *Service {
	return &Service{
		store:               store,
		backfiller:          backfiller,
		defaultRefreshHours: defaultRefreshHours,
	}
}

// Subscribe tracks the keyword for the user. The first subscription creates
// the keyword and dispatches its historic backfill.
func (s *Service) Subscribe(ctx context.Context, userID int64, keyword string) (*models.Keyword, error) {
	kw, err := s.store.GetByKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}

	created := false
	if kw == nil {
		kw, err = s.store.Create(ctx, keyword, s.defaultRefreshHours)
		if err != nil {
			return nil, err
		}
		if kw == nil {
			return nil, fmt.Errorf("keyword %q vanished during create", keyword)
		}
		created = true
	}

	if err := s.store.AddSubscription(ctx, userID, kw.ID); err != nil {
		return nil, err
	}

	if created {
		// One-time backfill, independent of the recurring sweep
		if err := s.backfiller.EnqueueScrapeHistoric(ctx, kw.Keyword); err != nil {
			logger.Error("failed to enqueue historic backfill",
				zap.String("keyword", kw.Keyword),
				zap.Error(err),
			)
		} else {
			logger.Info("keyword tracked, historic backfill dispatched",
				zap.String("keyword", kw.Keyword),
				zap.Int64("user_id", userID),
			)
		}
	}

	return kw, nil
}

// Unsubscribe stops tracking the keyword for the user and deletes the
// keyword once nobody subscribes to it anymore.
func (s *Service) Unsubscribe(ctx context.Context, userID int64, keyword string) error {
	kw, err := s.store.GetByKeyword(ctx, keyword)
	if err != nil {
		return err
	}
	if kw == nil {
		return nil
	}

	if err := s.store.RemoveSubscription(ctx, userID, kw.ID); err != nil {
		return err
	}

	count, err := s.store.SubscriberCount(ctx, kw.ID)
	if err != nil {
		return err
	}

	if count == 0 {
		if err := s.store.Delete(ctx, kw.ID); err != nil {
			return err
		}
		logger.Info("keyword dropped, no subscribers left",
			zap.String("keyword", kw.Keyword),
		)
	}

	return nil
}
