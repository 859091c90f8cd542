// Package stats derives history summaries and renders them as text.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
)

const sparkChars = "_.:-=+*#%@"

// Session status labels.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In Progress"
)

// DaySummary aggregates the completed sessions of one day.
type DaySummary struct {
	Date         string
	Completed    int
	InProgress   int
	TotalSeconds int
}

// SessionRow is one display row of a day's sessions.
type SessionRow struct {
	Exercise string
	Start    string
	End      string
	Duration string
	Status   string
}

// SessionSeconds returns the rounded length of a completed session.
// Open sessions and unparseable timestamps count as zero.
func SessionSeconds(s model.ExerciseSession) float64 {
	if !s.Completed {
		return 0
	}
	start, err := dates.ParseTimestamp(s.StartTime)
	if err != nil {
		return 0
	}
	end, err := dates.ParseTimestamp(s.EndTime)
	if err != nil {
		return 0
	}
	d := end.Sub(start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// SummarizeDay counts sessions and sums completed time for a record.
func SummarizeDay(rec model.DailyRecord) DaySummary {
	sum := DaySummary{Date: rec.Date}
	total := 0.0
	for _, s := range rec.Sessions {
		if !s.Completed {
			sum.InProgress++
			continue
		}
		sum.Completed++
		total += SessionSeconds(s)
	}
	sum.TotalSeconds = int(math.Round(total))
	return sum
}

// Rows converts a record's sessions into display rows. nameOf maps an
// exercise id to its display name.
func Rows(cal dates.Calendar, rec model.DailyRecord, nameOf func(string) string) []SessionRow {
	rows := make([]SessionRow, 0, len(rec.Sessions))
	for _, s := range rec.Sessions {
		row := SessionRow{
			Exercise: nameOf(s.ExerciseID),
			Start:    cal.FormatClockTime(s.StartTime),
			End:      "-",
			Duration: "-",
			Status:   StatusInProgress,
		}
		if s.Completed {
			row.End = cal.FormatClockTime(s.EndTime)
			row.Duration = dates.FormatDuration(int(math.Round(SessionSeconds(s))))
			row.Status = StatusCompleted
		}
		rows = append(rows, row)
	}
	return rows
}

// CompletedPerDay counts completed sessions for each of days.
func CompletedPerDay(history []model.DailyRecord, days []string) []float64 {
	byDate := completedByDate(history)
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = float64(byDate[d])
	}
	return out
}

// MinutesPerDay sums completed session minutes for each of days.
func MinutesPerDay(history []model.DailyRecord, days []string) []float64 {
	secs := map[string]float64{}
	for _, rec := range history {
		for _, s := range rec.Sessions {
			secs[rec.Date] += SessionSeconds(s)
		}
	}
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = secs[d] / 60
	}
	return out
}

// Streak counts consecutive days ending today with at least one completed
// session. A day without sessions yet today does not break the streak.
func Streak(cal dates.Calendar, history []model.DailyRecord) int {
	byDate := completedByDate(history)
	day := cal.Today()
	if byDate[day] == 0 {
		prev, err := cal.Shift(day, -1)
		if err != nil {
			return 0
		}
		day = prev
	}
	streak := 0
	for byDate[day] > 0 {
		streak++
		prev, err := cal.Shift(day, -1)
		if err != nil {
			break
		}
		day = prev
	}
	return streak
}

// LastSession returns the start time of the most recent session.
func LastSession(history []model.DailyRecord) (time.Time, bool) {
	var last time.Time
	found := false
	for _, rec := range history {
		for _, s := range rec.Sessions {
			ts, err := dates.ParseTimestamp(s.StartTime)
			if err != nil {
				continue
			}
			if !found || ts.After(last) {
				last, found = ts, true
			}
		}
	}
	return last, found
}

func completedByDate(history []model.DailyRecord) map[string]int {
	out := map[string]int{}
	for _, rec := range history {
		for _, s := range rec.Sessions {
			if s.Completed {
				out[rec.Date]++
			}
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline scaled from zero to the
// largest value.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return strings.Repeat(string(sparkChars[0]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v / maxVal * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
