package stats

import (
	"sort"
	"time"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
)

// DefaultOverviewDays is the span of the overview sparklines.
const DefaultOverviewDays = 7

// Report contains precomputed data for history rendering.
type Report struct {
	Now         time.Time
	Days        []string
	Completed   []float64
	Minutes     []float64
	Trend       []float64
	Streak      int
	LastSession time.Time
	HasLast     bool
	Summaries   []DaySummary
}

// BuildReport prepares overview data for the last days ending today. Days
// run oldest to newest; summaries are ordered most recent first.
func BuildReport(cal dates.Calendar, history []model.DailyRecord, days int) Report {
	if days <= 0 {
		days = DefaultOverviewDays
	}
	span := cal.PastDays(days)
	for i, j := 0, len(span)-1; i < j; i, j = i+1, j-1 {
		span[i], span[j] = span[j], span[i]
	}
	minutes := MinutesPerDay(history, span)
	r := Report{
		Now:       cal.Instant(),
		Days:      span,
		Completed: CompletedPerDay(history, span),
		Minutes:   minutes,
		Trend:     MovingAverage(minutes, 3),
		Streak:    Streak(cal, history),
	}
	r.LastSession, r.HasLast = LastSession(history)

	for _, rec := range history {
		r.Summaries = append(r.Summaries, SummarizeDay(rec))
	}
	sort.SliceStable(r.Summaries, func(i, j int) bool {
		return r.Summaries[i].Date > r.Summaries[j].Date
	})
	return r
}

// TotalCompleted sums completed sessions over the report span.
func (r Report) TotalCompleted() int {
	total := 0.0
	for _, v := range r.Completed {
		total += v
	}
	return int(total)
}
