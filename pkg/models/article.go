package models

import (
	"time"
)

// Article is one stored news article. UID is the content fingerprint
// (SHA-256 over normalized URL + title + published timestamp) and is the
// sole deduplication key across the store.
type Article struct {
	ID          int64         `db:"id"`
	UID         string        `db:"uid"`
	URL         string        `db:"url"`
	Title       string        `db:"title"`
	Snippet     *string       `db:"snippet"`
	Source      string        `db:"source"`
	PublishedAt time.Time     `db:"published_at"`
	Reports     ReportHistory `db:"sentiment_reports"`
	CreatedAt   time.Time     `db:"created_at"`
}

// HeadReport returns the most recent sentiment report, if any.
func (a *Article) HeadReport() *Report {
	return a.Reports.Head()
}
