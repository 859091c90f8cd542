package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/ledger"
	"github.com/verte-zerg/ptrack/internal/model"
)

func fixedCalendar(now time.Time) dates.Calendar {
	return dates.Calendar{
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}
}

func newLedger() *ledger.Ledger {
	return ledger.New(fixedCalendar(time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)))
}

func TestLedger_StartsOnToday(t *testing.T) {
	l := newLedger()
	assert.Equal(t, "2024-01-10", l.ActiveDate())
	assert.True(t, l.IsActiveToday())
	assert.Empty(t, l.History())
}

func TestLedger_StartSessionCreatesRecordLazily(t *testing.T) {
	l := newLedger()
	s, ok := l.StartSession("2024-01-10", "ex1")
	require.True(t, ok)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "ex1", s.ExerciseID)
	assert.Equal(t, "2024-01-10T09:30:00.000Z", s.StartTime)
	assert.Empty(t, s.EndTime)
	assert.False(t, s.Completed)
	assert.Zero(t, s.CompletedReps)

	rec, found := l.Record("2024-01-10")
	require.True(t, found)
	require.Len(t, rec.Sessions, 1)
	assert.Equal(t, s, rec.Sessions[0])
}

func TestLedger_AtMostOneOpenSessionPerExerciseAndDate(t *testing.T) {
	l := newLedger()
	_, ok := l.StartSession("2024-01-10", "ex1")
	require.True(t, ok)

	_, ok = l.StartSession("2024-01-10", "ex1")
	assert.False(t, ok)
	assert.Len(t, l.SessionsFor("2024-01-10"), 1)

	_, ok = l.StartSession("2024-01-10", "ex2")
	assert.True(t, ok, "other exercises are unaffected")
	_, ok = l.StartSession("2024-01-09", "ex1")
	assert.True(t, ok, "other dates are unaffected")
}

func TestLedger_CompleteRepRespectsLimit(t *testing.T) {
	l := newLedger()
	s, _ := l.StartSession(l.ActiveDate(), "ex1")
	for i := 1; i <= 3; i++ {
		n, ok := l.CompleteRep(s.ID, 3)
		require.True(t, ok)
		assert.Equal(t, i, n)
	}
	n, ok := l.CompleteRep(s.ID, 3)
	assert.False(t, ok)
	assert.Equal(t, 3, n)

	n, ok = l.CompleteRep(s.ID, 0)
	assert.True(t, ok, "non-positive limit disables the cap")
	assert.Equal(t, 4, n)
}

func TestLedger_CompleteRepIgnoresUnknownAndInactiveDates(t *testing.T) {
	l := newLedger()
	_, ok := l.CompleteRep("missing", 0)
	assert.False(t, ok)

	s, _ := l.StartSession("2024-01-09", "ex1")
	_, ok = l.CompleteRep(s.ID, 0)
	assert.False(t, ok, "only the active date is searched")
}

func TestLedger_CompleteSessionIsIdempotent(t *testing.T) {
	l := newLedger()
	s, _ := l.StartSession(l.ActiveDate(), "ex1")
	require.True(t, l.CompleteSession(s.ID, "felt good"))

	before := l.History()
	assert.False(t, l.CompleteSession(s.ID, "again"))
	assert.Equal(t, before, l.History())

	got := l.SessionsFor(l.ActiveDate())[0]
	assert.True(t, got.Completed)
	assert.Equal(t, "felt good", got.Notes)
	assert.Equal(t, "2024-01-10T09:30:00.000Z", got.EndTime)

	_, ok := l.CompleteRep(s.ID, 0)
	assert.False(t, ok, "completed sessions take no more reps")
	assert.Equal(t, 1, l.CompletedCountFor("ex1", l.ActiveDate()))
}

func TestLedger_CancelSessionSearchesAllDates(t *testing.T) {
	l := newLedger()
	a, _ := l.StartSession("2024-01-08", "ex1")
	b, _ := l.StartSession("2024-01-08", "ex2")

	require.True(t, l.CancelSession(a.ID))
	sessions := l.SessionsFor("2024-01-08")
	require.Len(t, sessions, 1)
	assert.Equal(t, b.ID, sessions[0].ID)
	assert.False(t, l.CancelSession(a.ID))
}

func TestLedger_SetActiveDate(t *testing.T) {
	l := newLedger()
	l.SetActiveDate("2024-01-05")
	assert.Equal(t, "2024-01-05", l.ActiveDate())

	l.SetActiveDate("not a date")
	assert.Equal(t, "2024-01-10", l.ActiveDate())

	l.SetActiveDate("2024-02-01")
	assert.Equal(t, "2024-01-10", l.ActiveDate(), "future dates clamp to today")

	l.SetActiveDate("2024-01-03T10:00:00Z")
	assert.Equal(t, "2024-01-03", l.ActiveDate())
}

func TestLedger_DayNavigation(t *testing.T) {
	l := newLedger()
	assert.False(t, l.NextDay())
	l.PreviousDay()
	l.PreviousDay()
	assert.Equal(t, "2024-01-08", l.ActiveDate())
	assert.True(t, l.NextDay())
	assert.Equal(t, "2024-01-09", l.ActiveDate())
	l.ResetToToday()
	assert.True(t, l.IsActiveToday())
}

func TestLedger_ReplaceAllMergesDuplicateDates(t *testing.T) {
	l := newLedger()
	l.ReplaceAll([]model.DailyRecord{
		{Date: "2024-01-05", Sessions: []model.ExerciseSession{{ID: "a", ExerciseID: "ex1", Completed: true}}},
		{Date: "2024-01-07", Sessions: []model.ExerciseSession{{ID: "b", ExerciseID: "ex1"}}},
		{Date: "2024-01-05", Sessions: []model.ExerciseSession{{ID: "c", ExerciseID: "ex2"}}},
	}, "2024-01-07")

	assert.Equal(t, "2024-01-07", l.ActiveDate())
	require.Len(t, l.History(), 2)
	sessions := l.SessionsFor("2024-01-05")
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "c", sessions[1].ID)
	assert.Equal(t, []string{"2024-01-07", "2024-01-05"}, l.Dates())
}

func TestLedger_HistoryIsACopy(t *testing.T) {
	l := newLedger()
	l.StartSession(l.ActiveDate(), "ex1")
	h := l.History()
	h[0].Sessions[0].CompletedReps = 99
	assert.Zero(t, l.SessionsFor(l.ActiveDate())[0].CompletedReps)
}

func TestLedger_ClearAll(t *testing.T) {
	l := newLedger()
	l.PreviousDay()
	l.StartSession(l.ActiveDate(), "ex1")
	l.ClearAll()
	assert.Empty(t, l.History())
	assert.True(t, l.IsActiveToday())
}

func TestLedger_FindSession(t *testing.T) {
	l := newLedger()
	s, _ := l.StartSession("2024-01-06", "ex1")
	got, date, ok := l.FindSession(s.ID)
	require.True(t, ok)
	assert.Equal(t, "2024-01-06", date)
	assert.Equal(t, s, got)
	_, _, ok = l.FindSession("nope")
	assert.False(t, ok)
}
