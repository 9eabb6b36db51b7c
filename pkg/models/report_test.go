package models

import (
	"encoding/json"
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func TestReportEmpty(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	r := NewReport("bitcoin", now)
	if !r.Empty() {
		t.Errorf("fresh report should be empty")
	}

	r.DocumentScore = floatPtr(0)
	if r.Empty() {
		t.Errorf("report with a zero document score is not empty")
	}

	r = NewReport("bitcoin", now)
	r.KeywordScores = []KeywordScore{{Text: "mining", Score: -0.2}}
	if r.Empty() {
		t.Errorf("report with keyword scores is not empty")
	}
}

func TestReportHistoryPrependNewestFirst(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	var h ReportHistory
	if h.Head() != nil {
		t.Fatalf("empty history should have no head")
	}

	first := NewReport("bitcoin", now)
	first.TargetScore = floatPtr(0.1)
	second := NewReport("bitcoin", now.Add(time.Hour))
	second.TargetScore = floatPtr(0.9)

	h.Prepend(first)
	h.Prepend(second)

	if len(h) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(h))
	}
	head := h.Head()
	if head == nil || *head.TargetScore != 0.9 {
		t.Errorf("head must be the most recently appended report")
	}
	if *h[1].TargetScore != 0.1 {
		t.Errorf("older report must shift down, not be replaced")
	}
}

func TestReportHistoryValueScanRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	report := NewReport("ethereum", now)
	report.DocumentScore = floatPtr(0.42)
	report.KeywordScores = []KeywordScore{{Text: "staking", Score: 0.7}}

	var h ReportHistory
	h.Prepend(report)

	raw, err := h.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	// The stored document is versioned
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw.([]byte), &doc); err != nil {
		t.Fatalf("stored value is not valid json: %v", err)
	}
	if string(doc["version"]) != "1" {
		t.Errorf("expected version 1, got %s", doc["version"])
	}

	var restored ReportHistory
	if err := restored.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(restored) != 1 {
		t.Fatalf("expected 1 report after round trip, got %d", len(restored))
	}
	got := restored[0]
	if got.TargetKeyword != "ethereum" {
		t.Errorf("target keyword lost: %q", got.TargetKeyword)
	}
	if got.DocumentScore == nil || *got.DocumentScore != 0.42 {
		t.Errorf("document score lost")
	}
	if got.TargetScore != nil {
		t.Errorf("missing target score must stay missing, got %v", *got.TargetScore)
	}
	if len(got.KeywordScores) != 1 || got.KeywordScores[0].Text != "staking" {
		t.Errorf("keyword scores lost: %+v", got.KeywordScores)
	}
}

func TestReportHistoryScanNull(t *testing.T) {
	h := ReportHistory{NewReport("bitcoin", time.Now())}
	if err := h.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if h != nil {
		t.Errorf("scanning NULL should clear the history")
	}
}

func TestReportHistoryEmptyValueIsNull(t *testing.T) {
	var h ReportHistory
	raw, err := h.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if raw != nil {
		t.Errorf("empty history should store NULL, got %v", raw)
	}
}

func TestReportJSONFieldNames(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	r := NewReport("bitcoin", now)
	r.DocumentScore = floatPtr(0.5)
	r.TargetScore = floatPtr(-0.3)

	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"created_at", "target_keyword", "global_score", "target_keyword_score"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected json field %q", key)
		}
	}
	if fields["created_at"] != "2026-03-14T09:30:00.000000" {
		t.Errorf("unexpected created_at format: %v", fields["created_at"])
	}
}
