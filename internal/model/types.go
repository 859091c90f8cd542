// Package model defines shared data structures.
package model

import "time"

// TimestampLayout is the ISO-8601 UTC layout used for session timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Exercise is a user-defined exercise.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        int    `json:"reps"`
	Duration    int    `json:"duration"` // seconds per rep
	Description string `json:"description,omitempty"`
}

// ExerciseDraft is an exercise before an id is assigned.
type ExerciseDraft struct {
	Name        string
	Sets        int
	Reps        int
	Duration    int
	Description string
}

// Draft strips the id from an exercise.
func (e Exercise) Draft() ExerciseDraft {
	return ExerciseDraft{
		Name:        e.Name,
		Sets:        e.Sets,
		Reps:        e.Reps,
		Duration:    e.Duration,
		Description: e.Description,
	}
}

// ExerciseSession is one attempt at a set. EndTime is empty until completed.
type ExerciseSession struct {
	ID            string `json:"id"`
	ExerciseID    string `json:"exerciseId"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Completed     bool   `json:"completed"`
	CompletedReps int    `json:"completedReps"`
	Notes         string `json:"notes,omitempty"`
}

// DailyRecord holds the sessions of one calendar day in chronological order.
type DailyRecord struct {
	Date     string            `json:"date"`
	Sessions []ExerciseSession `json:"sessions"`
}

// State is the persisted application state.
type State struct {
	Exercises   []Exercise    `json:"exercises"`
	History     []DailyRecord `json:"history"`
	CurrentDate string        `json:"currentDate"`
}

// Normalized returns a copy with non-nil slices so the state always
// serializes with arrays rather than nulls.
func (s State) Normalized() State {
	out := State{
		Exercises:   append([]Exercise{}, s.Exercises...),
		History:     make([]DailyRecord, 0, len(s.History)),
		CurrentDate: s.CurrentDate,
	}
	for _, rec := range s.History {
		out.History = append(out.History, rec.Clone())
	}
	return out
}

// Clone deep-copies a record.
func (r DailyRecord) Clone() DailyRecord {
	return DailyRecord{
		Date:     r.Date,
		Sessions: append([]ExerciseSession{}, r.Sessions...),
	}
}

// FormatTimestamp renders t in the session timestamp layout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
