// Package app wires the catalog, ledger, timer and persistence together and
// exposes the command and query surface used by the CLI and TUIs.
package app

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/ptrack/internal/catalog"
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/ledger"
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/timer"
)

// Persister loads and saves the whole state. Load reports false with a nil
// error when nothing is stored and a non-nil error when the stored state is
// unreadable.
type Persister interface {
	Load(ctx context.Context) (model.State, bool, error)
	Save(ctx context.Context, state model.State) error
}

// Deps are the collaborators of an App.
type Deps struct {
	Store    Persister
	Calendar dates.Calendar
	Timer    *timer.Engine
}

// App is the single owner of the working state. It is not safe for
// concurrent use; callers serialize commands, including timer ticks.
type App struct {
	ctx     context.Context
	store   Persister
	cal     dates.Calendar
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	timer   *timer.Engine
	focus   string
	loadErr error
	saveErr error
}

// New loads persisted state and always makes today the active date,
// whatever date was saved. The state is written back immediately unless the
// stored state was unreadable; then it is left in place until the first
// command saves over it. ctx bounds every later save.
func New(ctx context.Context, deps Deps) *App {
	a := &App{
		ctx:     ctx,
		store:   deps.Store,
		cal:     deps.Calendar,
		catalog: catalog.New(nil),
		ledger:  ledger.New(deps.Calendar),
		timer:   deps.Timer,
	}
	if a.timer == nil {
		a.timer = timer.New()
	}
	state, ok, err := a.store.Load(ctx)
	switch {
	case err != nil:
		a.loadErr = err
		log.WithError(err).Warn("saved state is unreadable, starting empty and keeping the stored copy")
	case ok:
		a.catalog.ReplaceAll(state.Exercises)
		a.ledger.ReplaceAll(state.History, state.CurrentDate)
		if state.CurrentDate != a.cal.Today() {
			log.WithField("date", state.CurrentDate).Debug("saved active date is not today, resetting")
		}
	}
	a.ledger.ResetToToday()
	if a.loadErr == nil {
		a.save()
	}
	return a
}

func (a *App) save() {
	a.saveErr = a.store.Save(a.ctx, a.Snapshot())
}

// LoadError reports why the stored state could not be read at startup.
func (a *App) LoadError() error {
	return a.loadErr
}

// SaveError returns the failure of the most recent save, nil after a
// successful one.
func (a *App) SaveError() error {
	return a.saveErr
}

// Snapshot returns the persisted shape of the current state.
func (a *App) Snapshot() model.State {
	return model.State{
		Exercises:   a.catalog.List(),
		History:     a.ledger.History(),
		CurrentDate: a.ledger.ActiveDate(),
	}.Normalized()
}

// AddExercise validates and appends a new exercise.
func (a *App) AddExercise(d model.ExerciseDraft) (model.Exercise, error) {
	ex, err := a.catalog.Add(d)
	if err != nil {
		return model.Exercise{}, err
	}
	log.WithField("exercise_id", ex.ID).Debug("exercise added")
	a.save()
	return ex, nil
}

// UpdateExercise replaces an exercise by id. Unknown ids are ignored.
func (a *App) UpdateExercise(ex model.Exercise) (bool, error) {
	ok, err := a.catalog.Update(ex)
	if err != nil {
		return false, err
	}
	a.save()
	return ok, nil
}

// DeleteExercise removes an exercise. Its sessions stay in the history.
func (a *App) DeleteExercise(id string) bool {
	ok := a.catalog.Delete(id)
	if ok && a.focus == id {
		a.ResetTimer()
	}
	a.save()
	return ok
}

// ReuseExercise copies a catalog entry under a fresh id.
func (a *App) ReuseExercise(id string) (model.Exercise, bool) {
	ex, ok := a.catalog.Reuse(id)
	a.save()
	return ex, ok
}

// ImportExercises replaces the catalog wholesale.
func (a *App) ImportExercises(list []model.Exercise) {
	a.catalog.ReplaceAll(list)
	a.save()
}

// StartSession opens a set of an exercise on the active date. An open
// session whose reps are all done is completed first. It refuses while an
// open session still has reps left or once every set is done.
func (a *App) StartSession(exerciseID string) (model.ExerciseSession, bool) {
	ex, ok := a.catalog.Get(exerciseID)
	if !ok {
		return model.ExerciseSession{}, false
	}
	date := a.ledger.ActiveDate()
	if open, ok := a.ledger.OpenSessionFor(exerciseID, date); ok {
		if open.CompletedReps < ex.Reps {
			return model.ExerciseSession{}, false
		}
		a.ledger.CompleteSession(open.ID, open.Notes)
	}
	if a.ledger.CompletedCountFor(exerciseID, date) >= ex.Sets {
		a.save()
		return model.ExerciseSession{}, false
	}
	s, ok := a.ledger.StartSession(date, exerciseID)
	if ok {
		log.WithFields(log.Fields{"exercise_id": exerciseID, "session_id": s.ID, "date": date}).Debug("session started")
	}
	a.save()
	return s, ok
}

// CompleteRep records a rep on an open session of the active date and
// completes the session once its exercise's reps are reached.
func (a *App) CompleteRep(sessionID string) (int, bool) {
	limit := 0
	s, date, found := a.ledger.FindSession(sessionID)
	if found && date == a.ledger.ActiveDate() {
		if ex, ok := a.catalog.Get(s.ExerciseID); ok {
			limit = ex.Reps
		}
	}
	n, ok := a.ledger.CompleteRep(sessionID, limit)
	if ok && limit > 0 && n >= limit {
		a.ledger.CompleteSession(sessionID, "")
		log.WithField("session_id", sessionID).Debug("session completed")
	}
	a.save()
	return n, ok
}

// CompleteSession closes a session of the active date.
func (a *App) CompleteSession(sessionID, notes string) bool {
	ok := a.ledger.CompleteSession(sessionID, notes)
	a.save()
	return ok
}

// CancelSession removes a session from the history.
func (a *App) CancelSession(sessionID string) bool {
	ok := a.ledger.CancelSession(sessionID)
	a.save()
	return ok
}

// SetActiveDate switches the viewed date. Malformed or future keys fall
// back to today.
func (a *App) SetActiveDate(key string) {
	a.ResetTimer()
	a.ledger.SetActiveDate(key)
	a.save()
}

// PreviousDay moves the active date one day back.
func (a *App) PreviousDay() {
	a.ResetTimer()
	a.ledger.PreviousDay()
	a.save()
}

// NextDay moves the active date forward, never past today.
func (a *App) NextDay() bool {
	ok := a.ledger.NextDay()
	if ok {
		a.ResetTimer()
	}
	a.save()
	return ok
}

// ResetToToday makes today the active date.
func (a *App) ResetToToday() {
	a.ResetTimer()
	a.ledger.ResetToToday()
	a.save()
}

// ClearHistory drops every session and returns to today.
func (a *App) ClearHistory() {
	a.ResetTimer()
	a.ledger.ClearAll()
	a.save()
}

// ImportHistory replaces the history and active date.
func (a *App) ImportHistory(history []model.DailyRecord, currentDate string) {
	a.ResetTimer()
	a.ledger.ReplaceAll(history, currentDate)
	a.save()
}

// ImportSnapshot replaces exercises, history and active date.
func (a *App) ImportSnapshot(state model.State) {
	a.ResetTimer()
	a.catalog.ReplaceAll(state.Exercises)
	a.ledger.ReplaceAll(state.History, state.CurrentDate)
	a.save()
}
