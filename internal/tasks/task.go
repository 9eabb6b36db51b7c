package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates the three independent work units of the pipeline
type Type string

const (
	// TypeScrapeLatest fetches the newest headlines for a keyword
	TypeScrapeLatest Type = "scrape_latest"
	// TypeScrapeHistoric is the one-time backfill for a new keyword
	TypeScrapeHistoric Type = "scrape_historic"
	// TypeAnalyze runs sentiment analysis for one article and keyword
	TypeAnalyze Type = "analyze"
)

// Task is one unit of asynchronous work on the queue. Every unit is
// independently retryable and idempotent: re-running a scrape is absorbed
// by fingerprint dedup, re-running an analyze appends another report.
type Task struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Keyword    string    `json:"keyword,omitempty"`
	ArticleUID string    `json:"article_uid,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewScrapeLatest builds a scrape-latest task
func NewScrapeLatest(keyword string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       TypeScrapeLatest,
		Keyword:    keyword,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewScrapeHistoric builds a backfill task
func NewScrapeHistoric(keyword string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       TypeScrapeHistoric,
		Keyword:    keyword,
		EnqueuedAt: time.Now().UTC(),
	}
}

// NewAnalyze builds an analyze task for one stored article
func NewAnalyze(articleUID, keyword string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       TypeAnalyze,
		Keyword:    keyword,
		ArticleUID: articleUID,
		EnqueuedAt: time.Now().UTC(),
	}
}
