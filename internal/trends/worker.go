package trends

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/clickhouse"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// ArticleSource loads the analyzed articles for a keyword
type ArticleSource interface {
	ListByHeadKeyword(ctx context.Context, keyword string, since *time.Time) ([]*models.Article, error)
}

// KeywordLister lists the keywords to snapshot
type KeywordLister interface {
	Active(ctx context.Context) ([]*models.Keyword, error)
}

// TrendSink receives the resampled daily trend lines
type TrendSink interface {
	SaveTrendPoints(ctx context.Context, points []clickhouse.TrendPoint) error
}

// AlertNotifier is told when a keyword's latest daily score crosses the
// alert threshold
type AlertNotifier interface {
	SendTrendAlert(keyword string, score float64, samples int) error
}

// Service builds trend views from the accumulated sentiment state
type Service struct {
	articles ArticleSource
}

// NewService creates new trend service
func NewService(articles ArticleSource) *Service {
	return &Service{articles: articles}
}

// TrendFor returns the keyword's daily trend line, zero-filled across the
// span of its observations
func (s *Service) TrendFor(ctx context.Context, keyword string, since *time.Time) ([]DailyPoint, error) {
	list, err := s.articles.ListByHeadKeyword(ctx, keyword, since)
	if err != nil {
		return nil, err
	}

	return ResampleDaily(ScoreSeries(list)[keyword]), nil
}

// AveragesFor returns the mean head score and sample count for the keyword
func (s *Service) AveragesFor(ctx context.Context, keyword string, since *time.Time) (Average, error) {
	list, err := s.articles.ListByHeadKeyword(ctx, keyword, since)
	if err != nil {
		return Average{}, err
	}

	return ScoreAverages(list)[keyword], nil
}

// SnapshotWorker periodically rebuilds each active keyword's daily trend,
// ships it to the analytics sink and raises threshold alerts. It implements
// pkg/worker.Worker.
type SnapshotWorker struct {
	service         *Service
	keywords        KeywordLister
	sink            TrendSink
	notifier        AlertNotifier
	smoothingPeriod int
	alertThreshold  float64
}

// NewSnapshotWorker creates new trend snapshot worker. sink and notifier
// are optional.
func NewSnapshotWorker(
	service *Service,
	keywords KeywordLister,
	sink TrendSink,
	notifier AlertNotifier,
	smoothingPeriod int,
	alertThreshold float64,
) *SnapshotWorker {
	return &SnapshotWorker{
		service:         service,
		keywords:        keywords,
		sink:            sink,
		notifier:        notifier,
		smoothingPeriod: smoothingPeriod,
		alertThreshold:  alertThreshold,
	}
}

// Name implements worker.Worker
func (w *SnapshotWorker) Name() string {
	return "trend-snapshot"
}

// Run rebuilds the trend line for every active keyword
func (w *SnapshotWorker) Run(ctx context.Context) error {
	keywords, err := w.keywords.Active(ctx)
	if err != nil {
		return err
	}

	for _, kw := range keywords {
		if err := w.snapshot(ctx, kw.Keyword); err != nil {
			// One bad keyword must not starve the rest
			logger.Error("trend snapshot failed",
				zap.String("keyword", kw.Keyword),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (w *SnapshotWorker) snapshot(ctx context.Context, keyword string) error {
	daily, err := w.service.TrendFor(ctx, keyword, nil)
	if err != nil {
		return err
	}
	if len(daily) == 0 {
		return nil
	}

	smoothed := Smooth(daily, w.smoothingPeriod)

	if w.sink != nil {
		points := make([]clickhouse.TrendPoint, len(daily))
		for i, dp := range daily {
			points[i] = clickhouse.TrendPoint{
				Day:      dp.Date,
				Keyword:  keyword,
				Score:    dp.Score,
				Smoothed: smoothed[i],
				Samples:  dp.Samples,
			}
		}
		if err := w.sink.SaveTrendPoints(ctx, points); err != nil {
			return err
		}
	}

	latest := daily[len(daily)-1]
	if w.notifier != nil && latest.Samples > 0 && Crosses(latest.Score, w.alertThreshold) {
		if err := w.notifier.SendTrendAlert(keyword, latest.Score, latest.Samples); err != nil {
			logger.Warn("failed to send trend alert",
				zap.String("keyword", keyword),
				zap.Error(err),
			)
		}
	}

	logger.Debug("trend snapshot built",
		zap.String("keyword", keyword),
		zap.Int("days", len(daily)),
	)

	return nil
}
