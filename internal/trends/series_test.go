package trends

import (
	"math"
	"testing"
	"time"

	"github.com/vkravets/newspulse/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func analyzed(keyword string, score float64, publishedAt time.Time) *models.Article {
	report := models.NewReport(keyword, publishedAt)
	report.TargetScore = floatPtr(score)
	return &models.Article{
		PublishedAt: publishedAt,
		Reports:     models.ReportHistory{report},
	}
}

func TestScoreSeriesHeadReportOnly(t *testing.T) {
	older := models.NewReport("bitcoin", day(1))
	older.TargetScore = floatPtr(-0.9)
	newer := models.NewReport("ethereum", day(2))
	newer.TargetScore = floatPtr(0.4)

	a := &models.Article{
		PublishedAt: day(2),
		Reports:     models.ReportHistory{newer, older},
	}

	series := ScoreSeries([]*models.Article{a})

	if len(series["bitcoin"]) != 0 {
		t.Errorf("superseded reports must not contribute points")
	}
	if pts := series["ethereum"]; len(pts) != 1 || pts[0].Score != 0.4 {
		t.Errorf("head report must contribute its point, got %+v", pts)
	}
}

func TestScoreSeriesSkipsMissingTargetScore(t *testing.T) {
	report := models.NewReport("bitcoin", day(1))
	report.DocumentScore = floatPtr(0.7)

	a := &models.Article{PublishedAt: day(1), Reports: models.ReportHistory{report}}
	unanalyzed := &models.Article{PublishedAt: day(1)}

	series := ScoreSeries([]*models.Article{a, unanalyzed})
	if len(series["bitcoin"]) != 0 {
		t.Errorf("a missing target score is not a zero score")
	}
}

func TestScoreSeriesSortedAscending(t *testing.T) {
	arts := []*models.Article{
		analyzed("bitcoin", 0.3, day(5)),
		analyzed("bitcoin", 0.1, day(2)),
		analyzed("bitcoin", 0.2, day(4)),
	}

	pts := ScoreSeries(arts)["bitcoin"]
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Date.Before(pts[i-1].Date) {
			t.Errorf("points not sorted ascending: %v", pts)
		}
	}
}

func TestScoreAverages(t *testing.T) {
	arts := []*models.Article{
		analyzed("bitcoin", 0.2, day(1)),
		analyzed("bitcoin", 0.4, day(2)),
		analyzed("bitcoin", 0.6, day(3)),
	}

	avg := ScoreAverages(arts)["bitcoin"]
	if avg.Count != 3 {
		t.Errorf("count = %d, want 3", avg.Count)
	}
	if math.Abs(avg.Mean-0.4) > 1e-9 {
		t.Errorf("mean = %v, want 0.4", avg.Mean)
	}
}

func TestResampleDailyZeroFillsGaps(t *testing.T) {
	points := []Point{
		{Date: day(1).Add(9 * time.Hour), Score: 0.6},
		{Date: day(1).Add(15 * time.Hour), Score: 1.0},
		{Date: day(3).Add(4 * time.Hour), Score: 0.4},
	}

	daily := ResampleDaily(points)
	if len(daily) != 3 {
		t.Fatalf("expected 3 day bins, got %d", len(daily))
	}

	want := []struct {
		date    time.Time
		score   float64
		samples int
	}{
		{day(1), 0.8, 2},
		{day(2), 0.0, 0},
		{day(3), 0.4, 1},
	}

	for i, w := range want {
		got := daily[i]
		if !got.Date.Equal(w.date) {
			t.Errorf("bin %d date = %v, want %v", i, got.Date, w.date)
		}
		if math.Abs(got.Score-w.score) > 1e-9 {
			t.Errorf("bin %d score = %v, want %v", i, got.Score, w.score)
		}
		if got.Samples != w.samples {
			t.Errorf("bin %d samples = %d, want %d", i, got.Samples, w.samples)
		}
	}
}

func TestResampleDailySingleDay(t *testing.T) {
	daily := ResampleDaily([]Point{{Date: day(1).Add(time.Hour), Score: 0.5}})
	if len(daily) != 1 {
		t.Fatalf("expected 1 bin, got %d", len(daily))
	}
	if daily[0].Score != 0.5 || daily[0].Samples != 1 {
		t.Errorf("unexpected bin %+v", daily[0])
	}
}

func TestResampleDailyEmpty(t *testing.T) {
	if got := ResampleDaily(nil); got != nil {
		t.Errorf("no points must resample to nil, got %v", got)
	}
}

func TestSmoothAlignsWithBins(t *testing.T) {
	daily := []DailyPoint{
		{Date: day(1), Score: 0.2},
		{Date: day(2), Score: 0.4},
		{Date: day(3), Score: 0.6},
		{Date: day(4), Score: 0.8},
	}

	smoothed := Smooth(daily, 2)
	if len(smoothed) != len(daily) {
		t.Fatalf("smoothed length %d must match bins %d", len(smoothed), len(daily))
	}
	if math.Abs(smoothed[3]-0.7) > 1e-9 {
		t.Errorf("sma(2) at last bin = %v, want 0.7", smoothed[3])
	}
}

func TestCrosses(t *testing.T) {
	tests := []struct {
		score     float64
		threshold float64
		want      bool
	}{
		{0.6, 0.5, true},
		{-0.6, 0.5, true},
		{0.5, 0.5, true},
		{0.49, 0.5, false},
		{0, 0.5, false},
	}

	for _, tt := range tests {
		if got := Crosses(tt.score, tt.threshold); got != tt.want {
			t.Errorf("Crosses(%v, %v) = %v, want %v", tt.score, tt.threshold, got, tt.want)
		}
	}
}
