// Package ledger records exercise sessions under calendar dates.
package ledger

import (
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
)

// Ledger maps date keys to the ordered sessions performed that day and
// tracks the active (viewed) date.
type Ledger struct {
	records    []model.DailyRecord
	activeDate string
	cal        dates.Calendar
	newID      func() string
}

// New returns an empty ledger whose active date is today.
func New(cal dates.Calendar) *Ledger {
	return &Ledger{
		activeDate: cal.Today(),
		cal:        cal,
		newID:      uuid.NewString,
	}
}

// ActiveDate returns the currently viewed date key.
func (l *Ledger) ActiveDate() string {
	return l.activeDate
}

// SetActiveDate normalizes key and makes it active. Malformed keys fall
// back to today, and dates after today are clamped to today.
func (l *Ledger) SetActiveDate(key string) {
	l.activeDate = l.sanitizeDate(key)
}

func (l *Ledger) sanitizeDate(key string) string {
	today := l.cal.Today()
	normalized, err := l.cal.NormalizeKey(key)
	if err != nil {
		log.WithField("date", key).Warnf("invalid active date, using today: %s", err)
		return today
	}
	if normalized > today {
		return today
	}
	return normalized
}

// ResetToToday makes today the active date.
func (l *Ledger) ResetToToday() {
	l.activeDate = l.cal.Today()
}

// IsActiveToday reports whether the active date is today.
func (l *Ledger) IsActiveToday() bool {
	return l.activeDate == l.cal.Today()
}

// PreviousDay moves the active date one day back.
func (l *Ledger) PreviousDay() {
	prev, err := l.cal.Shift(l.activeDate, -1)
	if err != nil {
		l.ResetToToday()
		return
	}
	l.activeDate = prev
}

// NextDay moves the active date one day forward unless that passes today.
func (l *Ledger) NextDay() bool {
	next, err := l.cal.Shift(l.activeDate, 1)
	if err != nil {
		l.ResetToToday()
		return false
	}
	if next > l.cal.Today() {
		return false
	}
	l.activeDate = next
	return true
}

// StartSession opens a new session for exerciseID on date. It refuses when
// that exercise already has an incomplete session on that date.
func (l *Ledger) StartSession(date, exerciseID string) (model.ExerciseSession, bool) {
	if _, open := l.OpenSessionFor(exerciseID, date); open {
		return model.ExerciseSession{}, false
	}
	session := model.ExerciseSession{
		ID:         l.newID(),
		ExerciseID: exerciseID,
		StartTime:  model.FormatTimestamp(l.cal.Instant()),
		EndTime:    "",
	}
	idx := l.recordIndex(date)
	if idx < 0 {
		l.records = append(l.records, model.DailyRecord{Date: date})
		idx = len(l.records) - 1
	}
	l.records[idx].Sessions = append(l.records[idx].Sessions, session)
	return session, true
}

// CompleteRep adds one rep to an open session of the active date. The count
// never exceeds limit; a non-positive limit disables the cap. It returns the
// resulting rep count and whether a rep was recorded.
func (l *Ledger) CompleteRep(sessionID string, limit int) (int, bool) {
	s := l.activeSession(sessionID)
	if s == nil || s.Completed {
		return 0, false
	}
	if limit > 0 && s.CompletedReps >= limit {
		return s.CompletedReps, false
	}
	s.CompletedReps++
	return s.CompletedReps, true
}

// CompleteSession closes an open session of the active date. Completing an
// already completed session changes nothing.
func (l *Ledger) CompleteSession(sessionID, notes string) bool {
	s := l.activeSession(sessionID)
	if s == nil || s.Completed {
		return false
	}
	s.EndTime = model.FormatTimestamp(l.cal.Instant())
	s.Completed = true
	s.Notes = notes
	return true
}

// CancelSession removes a session from whichever record holds it.
func (l *Ledger) CancelSession(sessionID string) bool {
	for i := range l.records {
		sessions := l.records[i].Sessions
		for j := range sessions {
			if sessions[j].ID == sessionID {
				l.records[i].Sessions = append(sessions[:j:j], sessions[j+1:]...)
				return true
			}
		}
	}
	return false
}

// ClearAll drops every record and resets the active date.
func (l *Ledger) ClearAll() {
	l.records = nil
	l.ResetToToday()
}

// ReplaceAll swaps in imported history. Records sharing a date are merged in
// file order; a malformed active date falls back to today.
func (l *Ledger) ReplaceAll(history []model.DailyRecord, activeDate string) {
	l.records = nil
	for _, rec := range history {
		date := rec.Date
		if normalized, err := l.cal.NormalizeKey(rec.Date); err == nil {
			date = normalized
		} else {
			log.WithField("date", rec.Date).Warn("imported record has malformed date, keeping as is")
		}
		idx := l.recordIndex(date)
		if idx < 0 {
			l.records = append(l.records, model.DailyRecord{Date: date})
			idx = len(l.records) - 1
		}
		l.records[idx].Sessions = append(l.records[idx].Sessions, rec.Sessions...)
	}
	l.activeDate = l.sanitizeDate(activeDate)
}

// History returns a copy of every record in insertion order.
func (l *Ledger) History() []model.DailyRecord {
	out := make([]model.DailyRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec.Clone())
	}
	return out
}

// Dates returns the recorded date keys, most recent first.
func (l *Ledger) Dates() []string {
	keys := make([]string, 0, len(l.records))
	for _, rec := range l.records {
		keys = append(keys, rec.Date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// Record returns the record for date.
func (l *Ledger) Record(date string) (model.DailyRecord, bool) {
	idx := l.recordIndex(date)
	if idx < 0 {
		return model.DailyRecord{Date: date, Sessions: []model.ExerciseSession{}}, false
	}
	return l.records[idx].Clone(), true
}

// SessionsFor returns the sessions of date in chronological order.
func (l *Ledger) SessionsFor(date string) []model.ExerciseSession {
	rec, _ := l.Record(date)
	return rec.Sessions
}

// CompletedCountFor counts completed sessions (sets) of an exercise on date.
func (l *Ledger) CompletedCountFor(exerciseID, date string) int {
	count := 0
	for _, s := range l.SessionsFor(date) {
		if s.ExerciseID == exerciseID && s.Completed {
			count++
		}
	}
	return count
}

// OpenSessionFor returns the incomplete session of an exercise on date.
func (l *Ledger) OpenSessionFor(exerciseID, date string) (model.ExerciseSession, bool) {
	for _, s := range l.SessionsFor(date) {
		if s.ExerciseID == exerciseID && !s.Completed {
			return s, true
		}
	}
	return model.ExerciseSession{}, false
}

// FindSession locates a session by id across all records.
func (l *Ledger) FindSession(sessionID string) (model.ExerciseSession, string, bool) {
	for _, rec := range l.records {
		for _, s := range rec.Sessions {
			if s.ID == sessionID {
				return s, rec.Date, true
			}
		}
	}
	return model.ExerciseSession{}, "", false
}

func (l *Ledger) activeSession(sessionID string) *model.ExerciseSession {
	idx := l.recordIndex(l.activeDate)
	if idx < 0 {
		return nil
	}
	sessions := l.records[idx].Sessions
	for i := range sessions {
		if sessions[i].ID == sessionID {
			return &sessions[i]
		}
	}
	return nil
}

func (l *Ledger) recordIndex(date string) int {
	for i, rec := range l.records {
		if rec.Date == date {
			return i
		}
	}
	return -1
}
