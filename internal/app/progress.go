package app

import (
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/timer"
)

// Action is the primary action offered for an exercise.
type Action int

const (
	ActionStart Action = iota
	ActionResume
	ActionNextSet
	ActionDone
)

func (a Action) String() string {
	switch a {
	case ActionResume:
		return "Resume Exercise"
	case ActionNextSet:
		return "Start Next Set"
	case ActionDone:
		return "All Sets Completed"
	default:
		return "Start Exercise"
	}
}

// Progress describes an exercise on the active date.
type Progress struct {
	Exercise      model.Exercise
	CompletedSets int
	Open          model.ExerciseSession
	HasOpen       bool
	Action        Action
}

// CompletedReps returns the reps of the open session.
func (p Progress) CompletedReps() int {
	if !p.HasOpen {
		return 0
	}
	return p.Open.CompletedReps
}

// SetRatio is the fraction of sets done, in [0,1].
func (p Progress) SetRatio() float64 {
	return ratio(p.CompletedSets, p.Exercise.Sets)
}

// RepRatio is the fraction of reps done in the open session, in [0,1].
func (p Progress) RepRatio() float64 {
	return ratio(p.CompletedReps(), p.Exercise.Reps)
}

// Startable reports whether the primary action is enabled.
func (p Progress) Startable() bool {
	return p.Action != ActionDone
}

func ratio(done, total int) float64 {
	if total <= 0 || done <= 0 {
		return 0
	}
	if done >= total {
		return 1
	}
	return float64(done) / float64(total)
}

// Progress reports the state of an exercise on the active date.
func (a *App) Progress(exerciseID string) (Progress, bool) {
	ex, ok := a.catalog.Get(exerciseID)
	if !ok {
		return Progress{}, false
	}
	date := a.ledger.ActiveDate()
	p := Progress{
		Exercise:      ex,
		CompletedSets: a.ledger.CompletedCountFor(exerciseID, date),
	}
	p.Open, p.HasOpen = a.ledger.OpenSessionFor(exerciseID, date)
	switch {
	case p.CompletedSets >= ex.Sets:
		p.Action = ActionDone
	case p.HasOpen && p.Open.CompletedReps >= ex.Reps:
		p.Action = ActionNextSet
	case p.HasOpen:
		p.Action = ActionResume
	default:
		p.Action = ActionStart
	}
	return p, true
}

// TimerLabel names the rep timer control for an exercise.
func (a *App) TimerLabel(exerciseID string) string {
	snap := a.TimerFor(exerciseID)
	switch {
	case snap.State == timer.StateRunning:
		return "Pause Timer"
	case snap.Remaining > 0:
		return "Resume Timer"
	default:
		return "Start Rep Timer"
	}
}
