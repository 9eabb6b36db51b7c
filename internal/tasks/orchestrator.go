package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// Fetcher is the scrape stage of the pipeline
type Fetcher interface {
	FetchAndStore(ctx context.Context, keyword string, since *time.Time) []string
}

// Analyzer is the sentiment stage of the pipeline
type Analyzer interface {
	Process(ctx context.Context, article *models.Article, keyword string)
}

// ArticleGetter looks up stored articles by fingerprint
type ArticleGetter interface {
	GetByUID(ctx context.Context, uid string) (*models.Article, error)
}

// Orchestrator wires the work units together: scrape units fan out one
// analyze unit per newly stored article
type Orchestrator struct {
	fetcher  Fetcher
	analyzer Analyzer
	articles ArticleGetter
	producer *Producer
	lookback time.Duration
}

// NewOrchestrator creates new task orchestrator
func NewOrchestrator(
	fetcher Fetcher,
	analyzer Analyzer,
	articles ArticleGetter,
	producer *Producer,
	lookback time.Duration,
) *Orchestrator {
	return &Orchestrator{
		fetcher:  fetcher,
		analyzer: analyzer,
		articles: articles,
		producer: producer,
		lookback: lookback,
	}
}

// Handle executes one task
func (o *Orchestrator) Handle(ctx context.Context, task Task) error {
	switch task.Type {
	case TypeScrapeLatest:
		o.scrape(ctx, task.Keyword, nil)
		return nil

	case TypeScrapeHistoric:
		since := time.Now().UTC().Add(-o.lookback)
		o.scrape(ctx, task.Keyword, &since)
		return nil

	case TypeAnalyze:
		return o.analyze(ctx, task.ArticleUID, task.Keyword)

	default:
		return fmt.Errorf("unknown task type %q", task.Type)
	}
}

func (o *Orchestrator) scrape(ctx context.Context, keyword string, since *time.Time) {
	uids := o.fetcher.FetchAndStore(ctx, keyword, since)
	if len(uids) == 0 {
		// No new articles this cycle, nothing to analyze
		return
	}

	logger.Debug("scraped new articles",
		zap.String("keyword", keyword),
		zap.Int("count", len(uids)),
	)

	for _, uid := range uids {
		if err := o.producer.EnqueueAnalyze(ctx, uid, keyword); err != nil {
			logger.Error("failed to enqueue analyze task",
				zap.String("uid", uid),
				zap.String("keyword", keyword),
				zap.Error(err),
			)
		}
	}
}

func (o *Orchestrator) analyze(ctx context.Context, uid, keyword string) error {
	article, err := o.articles.GetByUID(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to load article %s: %w", uid, err)
	}
	if article == nil {
		// The article may have been purged by retention, not an error
		logger.Debug("article gone before analysis",
			zap.String("uid", uid),
		)
		return nil
	}

	o.analyzer.Process(ctx, article, keyword)
	return nil
}
