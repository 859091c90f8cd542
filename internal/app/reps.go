package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/ptrack/internal/timer"
)

// Timer exposes the rep timer for start, pause, resume, restart and reset.
func (a *App) Timer() *timer.Engine {
	return a.timer
}

// TimerFocus returns the exercise the rep timer currently belongs to.
func (a *App) TimerFocus() string {
	return a.focus
}

// TimerFor returns the rep timer state as seen by an exercise. Exercises
// without focus see an idle timer.
func (a *App) TimerFor(exerciseID string) timer.Snapshot {
	if a.focus != exerciseID {
		return timer.Snapshot{State: timer.StateIdle}
	}
	return a.timer.Snapshot()
}

// ResetTimer stops the rep timer and releases its focus.
func (a *App) ResetTimer() {
	a.timer.Reset()
	a.focus = ""
}

// ToggleRepTimer drives the rep timer of an exercise with an open session
// on the active date: pause when running, resume when paused, otherwise
// start a countdown of one rep. A finished countdown records the rep. A set
// whose reps are all done takes no timer; the next set must be started.
func (a *App) ToggleRepTimer(exerciseID string) bool {
	ex, ok := a.catalog.Get(exerciseID)
	if !ok {
		return false
	}
	open, ok := a.ledger.OpenSessionFor(exerciseID, a.ledger.ActiveDate())
	if !ok || open.CompletedReps >= ex.Reps {
		return false
	}
	if a.focus != exerciseID {
		a.timer.Reset()
		a.focus = exerciseID
	}
	snap := a.timer.Snapshot()
	switch {
	case snap.State == timer.StateRunning:
		a.timer.Pause()
	case snap.State == timer.StatePaused && snap.Remaining > 0:
		a.timer.Resume()
	default:
		sessionID := open.ID
		a.timer.Start(ex.Duration, func() { a.repDone(sessionID) })
	}
	return true
}

func (a *App) repDone(sessionID string) {
	n, ok := a.CompleteRep(sessionID)
	if !ok {
		log.WithField("session_id", sessionID).Warn("rep finished for a session that no longer takes reps")
	} else {
		log.WithFields(log.Fields{"session_id": sessionID, "reps": n}).Debug("rep completed")
	}
	a.timer.Reset()
}

// CancelExercise cancels the open session of an exercise on the active
// date and stops its timer.
func (a *App) CancelExercise(exerciseID string) bool {
	open, ok := a.ledger.OpenSessionFor(exerciseID, a.ledger.ActiveDate())
	if !ok {
		return false
	}
	if a.focus == exerciseID {
		a.ResetTimer()
	}
	return a.CancelSession(open.ID)
}
