package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportTimeFormat is the wire format for report creation timestamps
// (ISO-8601 without zone suffix, always UTC).
const ReportTimeFormat = "2006-01-02T15:04:05.000000"

// KeywordScore is one extracted keyword with its sentiment score.
type KeywordScore struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Report is a single sentiment analysis result attached to an article.
// DocumentScore and TargetScore are pointers because the provider may omit
// either one; a missing score is not the same thing as a score of 0.
type Report struct {
	CreatedAt     string         `json:"created_at"`
	TargetKeyword string         `json:"target_keyword"`
	DocumentScore *float64       `json:"global_score,omitempty"`
	TargetScore   *float64       `json:"target_keyword_score,omitempty"`
	KeywordScores []KeywordScore `json:"article_keywords_scores,omitempty"`
}

// NewReport builds a report stamped with the current UTC time.
func NewReport(targetKeyword string, now time.Time) Report {
	return Report{
		CreatedAt:     now.UTC().Format(ReportTimeFormat),
		TargetKeyword: targetKeyword,
	}
}

// Empty reports carry no extracted data and must not be persisted.
func (r Report) Empty() bool {
	return r.DocumentScore == nil && r.TargetScore == nil && len(r.KeywordScores) == 0
}

// ReportHistory is the append-only, newest-first sequence of sentiment
// reports for one article. It serializes to a versioned jsonb document:
//
//	{"version": 1, "reports": [ ... newest first ... ]}
type ReportHistory []Report

const reportHistoryVersion = 1

type reportHistoryDoc struct {
	Version int      `json:"version"`
	Reports []Report `json:"reports"`
}

// Prepend inserts a report at the head of the history. The head is always
// the most recently appended report; the list is never re-sorted.
func (h *ReportHistory) Prepend(r Report) {
	*h = append(ReportHistory{r}, *h...)
}

// Head returns the most recent report, or nil when no analysis ran yet.
func (h ReportHistory) Head() *Report {
	if len(h) == 0 {
		return nil
	}
	return &h[0]
}

// Value implements driver.Valuer for the jsonb column.
func (h ReportHistory) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	doc := reportHistoryDoc{Version: reportHistoryVersion, Reports: h}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal report history: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for the jsonb column.
func (h *ReportHistory) Scan(src interface{}) error {
	if src == nil {
		*h = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported report history type %T", src)
	}

	var doc reportHistoryDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal report history: %w", err)
	}

	*h = doc.Reports
	return nil
}
