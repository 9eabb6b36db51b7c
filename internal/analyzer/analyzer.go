package analyzer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/nlu"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// SentimentProvider is the external analysis service contract
type SentimentProvider interface {
	Analyze(ctx context.Context, docURL, keyword string) (*nlu.AnalyzeResponse, error)
}

// ReportStore appends sentiment reports to stored articles
type ReportStore interface {
	AppendReport(ctx context.Context, uid string, report models.Report) error
}

// Analyzer runs third-party sentiment analysis for one article and target
// keyword and records the result at the head of the article's report history
type Analyzer struct {
	provider SentimentProvider
	store    ReportStore
	now      func() time.Time
}

// New creates new analyzer
func New(provider SentimentProvider, store ReportStore) *Analyzer {
	return &Analyzer{
		provider: provider,
		store:    store,
		now:      time.Now,
	}
}

// Process analyzes the article for the keyword and persists the resulting
// report. An article without a URL cannot be analyzed and is skipped.
// Provider failures are logged and produce no report; the next scheduled
// analysis pass retries.
func (a *Analyzer) Process(ctx context.Context, article *models.Article, keyword string) {
	if article.URL == "" {
		logger.Debug("article has no url, skipping analysis",
			zap.String("uid", article.UID),
		)
		return
	}

	resp, err := a.provider.Analyze(ctx, article.URL, keyword)
	if err != nil {
		logger.Error("sentiment analysis failed",
			zap.String("uid", article.UID),
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return
	}

	report := a.buildReport(resp, keyword)
	if report.Empty() {
		logger.Debug("nothing extracted from sentiment response",
			zap.String("uid", article.UID),
			zap.String("keyword", keyword),
		)
		return
	}

	if err := a.store.AppendReport(ctx, article.UID, report); err != nil {
		logger.Error("failed to store sentiment report",
			zap.String("uid", article.UID),
			zap.Error(err),
		)
		return
	}

	logger.Debug("sentiment report stored",
		zap.String("uid", article.UID),
		zap.String("keyword", keyword),
	)
}

// buildReport extracts each response branch independently: the absence or
// unparsability of one never blocks the others, and missing scores stay
// missing rather than defaulting to zero.
func (a *Analyzer) buildReport(resp *nlu.AnalyzeResponse, keyword string) models.Report {
	report := models.NewReport(keyword, a.now())

	if resp.Sentiment != nil {
		if doc := resp.Sentiment.Document; doc != nil && doc.Score != nil {
			score := *doc.Score
			report.DocumentScore = &score
		}
		if targets := resp.Sentiment.Targets; len(targets) > 0 && targets[0].Score != nil {
			score := *targets[0].Score
			report.TargetScore = &score
		}
	}

	for _, kw := range resp.Keywords {
		if kw.Text == "" || kw.Sentiment == nil || kw.Sentiment.Score == nil {
			continue
		}
		report.KeywordScores = append(report.KeywordScores, models.KeywordScore{
			Text:  kw.Text,
			Score: *kw.Sentiment.Score,
		})
	}

	return report
}
