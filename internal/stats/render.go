package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
)

// RenderDay prints the summary and session table of one day.
func RenderDay(w io.Writer, cal dates.Calendar, rec model.DailyRecord, nameOf func(string) string) error {
	sum := SummarizeDay(rec)
	if _, err := fmt.Fprintln(w, cal.FormatFull(rec.Date)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed Sessions: %d\n", sum.Completed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total Time: %s\n", dates.FormatDuration(sum.TotalSeconds)); err != nil {
		return err
	}
	if len(rec.Sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded for this day.")
		return err
	}
	headers := []string{"Exercise", "Start Time", "End Time", "Duration", "Status"}
	rows := Rows(cal, rec, nameOf)
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{r.Exercise, r.Start, r.End, r.Duration, r.Status})
	}
	for _, line := range formatTable(headers, tableRows, map[int]bool{3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints every recorded day, most recent first.
func RenderHistory(w io.Writer, cal dates.Calendar, history []model.DailyRecord, nameOf func(string) string) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No exercise history found.")
		return err
	}
	report := BuildReport(cal, history, DefaultOverviewDays)
	if err := RenderOverview(w, report); err != nil {
		return err
	}
	byDate := map[string]model.DailyRecord{}
	for _, rec := range history {
		byDate[rec.Date] = rec
	}
	for _, sum := range report.Summaries {
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
		if err := RenderDay(w, cal, byDate[sum.Date], nameOf); err != nil {
			return err
		}
	}
	return nil
}

// RenderOverview prints the weekly sparkline, streak and last session.
func RenderOverview(w io.Writer, r Report) error {
	if _, err := fmt.Fprintf(w, "Last %d days: %s  (%d sets)\n", len(r.Days), Sparkline(r.Completed), r.TotalCompleted()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Minutes trend: %s\n", Sparkline(r.Trend)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Streak: %s\n", streakLabel(r.Streak)); err != nil {
		return err
	}
	last := "never"
	if r.HasLast {
		last = humanize.RelTime(r.LastSession, r.Now, "ago", "from now")
	}
	_, err := fmt.Fprintf(w, "Last session: %s\n", last)
	return err
}

func streakLabel(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
