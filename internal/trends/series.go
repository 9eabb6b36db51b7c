package trends

import (
	"math"
	"sort"
	"time"

	"github.com/cinar/indicator"

	"github.com/vkravets/newspulse/pkg/models"
)

// Point is one raw (date, score) observation taken from an article's
// head-of-history report
type Point struct {
	Date  time.Time
	Score float64
}

// DailyPoint is one calendar-day bin of the resampled trend line
type DailyPoint struct {
	Date    time.Time
	Score   float64
	Samples int
}

// Average summarizes one keyword's head scores
type Average struct {
	Mean  float64
	Count int
}

// ScoreSeries maps each target keyword to its ordered (date, score) points.
// Only the most recently attached report of each article counts; articles
// whose head report carries no target score contribute nothing.
func ScoreSeries(articles []*models.Article) map[string][]Point {
	series := make(map[string][]Point)

	for _, a := range articles {
		head := a.HeadReport()
		if head == nil || head.TargetScore == nil {
			continue
		}
		series[head.TargetKeyword] = append(series[head.TargetKeyword], Point{
			Date:  a.PublishedAt,
			Score: *head.TargetScore,
		})
	}

	for kw := range series {
		pts := series[kw]
		sort.Slice(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
		series[kw] = pts
	}

	return series
}

// ScoreAverages returns the mean head score and data point count per
// target keyword
func ScoreAverages(articles []*models.Article) map[string]Average {
	averages := make(map[string]Average)

	for kw, points := range ScoreSeries(articles) {
		var sum float64
		for _, p := range points {
			sum += p.Score
		}
		averages[kw] = Average{
			Mean:  sum / float64(len(points)),
			Count: len(points),
		}
	}

	return averages
}

// ResampleDaily buckets irregular points into calendar-day bins covering
// the full span from the earliest to the latest date, ascending. A bin's
// value is the arithmetic mean of its points; days without points get an
// explicit zero, not a gap.
func ResampleDaily(points []Point) []DailyPoint {
	if len(points) == 0 {
		return nil
	}

	type bin struct {
		sum   float64
		count int
	}

	bins := make(map[time.Time]*bin)
	var minDay, maxDay time.Time

	for _, p := range points {
		day := p.Date.UTC().Truncate(24 * time.Hour)
		b, ok := bins[day]
		if !ok {
			b = &bin{}
			bins[day] = b
		}
		b.sum += p.Score
		b.count++

		if minDay.IsZero() || day.Before(minDay) {
			minDay = day
		}
		if maxDay.IsZero() || day.After(maxDay) {
			maxDay = day
		}
	}

	out := make([]DailyPoint, 0, int(maxDay.Sub(minDay).Hours()/24)+1)
	for day := minDay; !day.After(maxDay); day = day.Add(24 * time.Hour) {
		dp := DailyPoint{Date: day}
		if b, ok := bins[day]; ok {
			dp.Score = b.sum / float64(b.count)
			dp.Samples = b.count
		}
		out = append(out, dp)
	}

	return out
}

// Smooth returns a simple moving average over the daily bin values
func Smooth(daily []DailyPoint, period int) []float64 {
	if len(daily) == 0 {
		return nil
	}

	values := make([]float64, len(daily))
	for i, dp := range daily {
		values[i] = dp.Score
	}

	return indicator.Sma(period, values)
}

// Crosses reports whether the score magnitude reaches the threshold
func Crosses(score, threshold float64) bool {
	return math.Abs(score) >= threshold
}
