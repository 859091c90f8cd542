package app

import (
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
)

// Calendar returns the calendar the app computes dates with.
func (a *App) Calendar() dates.Calendar {
	return a.cal
}

// Exercises lists the catalog in insertion order.
func (a *App) Exercises() []model.Exercise {
	return a.catalog.List()
}

// Exercise looks up an exercise by id.
func (a *App) Exercise(id string) (model.Exercise, bool) {
	return a.catalog.Get(id)
}

// ResolveExercise finds an exercise by id or name.
func (a *App) ResolveExercise(ref string) (model.Exercise, bool) {
	return a.catalog.Resolve(ref)
}

// SearchExercises filters the catalog by name or description.
func (a *App) SearchExercises(term string) []model.Exercise {
	return a.catalog.Search(term)
}

// ExerciseName returns the exercise name or a placeholder for deleted ones.
func (a *App) ExerciseName(id string) string {
	return a.catalog.NameOf(id)
}

// ActiveDate returns the viewed date key.
func (a *App) ActiveDate() string {
	return a.ledger.ActiveDate()
}

// IsActiveToday reports whether today is being viewed.
func (a *App) IsActiveToday() bool {
	return a.ledger.IsActiveToday()
}

// ActiveDateLabel returns Today, Yesterday or a weekday name.
func (a *App) ActiveDateLabel() string {
	return a.cal.RelativeLabel(a.ledger.ActiveDate())
}

// ActiveDateFull returns the long form of the active date.
func (a *App) ActiveDateFull() string {
	return a.cal.FormatFull(a.ledger.ActiveDate())
}

// Record returns the record for date, empty when nothing was logged.
func (a *App) Record(date string) model.DailyRecord {
	rec, _ := a.ledger.Record(date)
	return rec
}

// SessionsFor returns the sessions of date in order.
func (a *App) SessionsFor(date string) []model.ExerciseSession {
	return a.ledger.SessionsFor(date)
}

// CompletedCountFor counts completed sets of an exercise on date.
func (a *App) CompletedCountFor(exerciseID, date string) int {
	return a.ledger.CompletedCountFor(exerciseID, date)
}

// OpenSessionFor returns the incomplete session of an exercise on date.
func (a *App) OpenSessionFor(exerciseID, date string) (model.ExerciseSession, bool) {
	return a.ledger.OpenSessionFor(exerciseID, date)
}

// History returns every daily record.
func (a *App) History() []model.DailyRecord {
	return a.ledger.History()
}

// Dates returns recorded date keys, most recent first.
func (a *App) Dates() []string {
	return a.ledger.Dates()
}
