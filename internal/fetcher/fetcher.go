package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vkravets/newspulse/internal/adapters/newsapi"
	"github.com/vkravets/newspulse/internal/articles"
	"github.com/vkravets/newspulse/pkg/logger"
	"github.com/vkravets/newspulse/pkg/models"
)

// publishedAtLayout is the fixed external timestamp format; only the first
// 19 characters of the raw value are considered, the rest (zone suffix)
// is ignored by the source contract.
const publishedAtLayout = "2006-01-02T15:04:05"

// NewsSource is the external news service contract
type NewsSource interface {
	TopHeadlines(ctx context.Context, keyword string) ([]newsapi.RawArticle, error)
	Everything(ctx context.Context, keyword string, from time.Time) ([]newsapi.RawArticle, error)
}

// ArticleStore persists deduplicated candidates
type ArticleStore interface {
	InsertNew(ctx context.Context, candidates []*models.Article) ([]string, error)
}

// Fetcher pulls raw results from the news source, validates and normalizes
// them into article candidates, and stores the ones not seen before
type Fetcher struct {
	source NewsSource
	store  ArticleStore
}

// New creates new fetcher
func New(source NewsSource, store ArticleStore) *Fetcher {
	return &Fetcher{source: source, store: store}
}

// FetchAndStore fetches results for the keyword and stores the new ones,
// returning the accepted fingerprints. When since is nil only the latest
// headlines are requested; otherwise everything published on/after since.
// External failures degrade to an empty result: the next scheduled cycle
// retries, nothing propagates upward.
func (f *Fetcher) FetchAndStore(ctx context.Context, keyword string, since *time.Time) []string {
	var (
		raw []newsapi.RawArticle
		err error
	)

	if since != nil {
		raw, err = f.source.Everything(ctx, keyword, *since)
	} else {
		raw, err = f.source.TopHeadlines(ctx, keyword)
	}
	if err != nil {
		logger.Error("news source fetch failed",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return nil
	}

	candidates := f.parseResults(raw)
	if len(candidates) == 0 {
		return nil
	}

	accepted, err := f.store.InsertNew(ctx, candidates)
	if err != nil {
		logger.Error("failed to store articles",
			zap.String("keyword", keyword),
			zap.Error(err),
		)
		return nil
	}

	logger.Debug("fetch cycle finished",
		zap.String("keyword", keyword),
		zap.Int("fetched", len(raw)),
		zap.Int("valid", len(candidates)),
		zap.Int("new", len(accepted)),
	)

	return accepted
}

// parseResults turns untrusted raw entries into article candidates.
// Entries missing url, title or source name are discarded, as are entries
// with an unparsable timestamp. When two entries collapse to the same
// fingerprint, the first occurrence in response order wins.
func (f *Fetcher) parseResults(raw []newsapi.RawArticle) []*models.Article {
	seen := make(map[string]struct{}, len(raw))
	candidates := make([]*models.Article, 0, len(raw))

	for _, entry := range raw {
		if entry.URL == "" || entry.Title == "" || entry.Source.Name == "" {
			continue
		}

		normalized, err := articles.NormalizeURL(entry.URL)
		if err != nil {
			logger.Warn("discarding entry with bad url",
				zap.String("url", entry.URL),
				zap.Error(err),
			)
			continue
		}

		publishedAt, err := parsePublishedAt(entry.PublishedAt)
		if err != nil {
			logger.Warn("discarding entry with bad timestamp",
				zap.String("url", normalized),
				zap.String("published_at", entry.PublishedAt),
				zap.Error(err),
			)
			continue
		}

		uid := articles.Fingerprint(normalized, entry.Title, publishedAt)
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}

		var snippet *string
		if entry.Content != "" {
			s := entry.Content
			snippet = &s
		}

		candidates = append(candidates, &models.Article{
			UID:         uid,
			URL:         normalized,
			Title:       entry.Title,
			Snippet:     snippet,
			Source:      entry.Source.Name,
			PublishedAt: publishedAt,
		})
	}

	return candidates
}

func parsePublishedAt(value string) (time.Time, error) {
	if len(value) > len(publishedAtLayout) {
		value = value[:len(publishedAtLayout)]
	}
	return time.Parse(publishedAtLayout, value)
}
