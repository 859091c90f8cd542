package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/verte-zerg/ptrack/internal/model"
)

// ErrMalformedState is returned when a blob lacks the top-level shape of a
// tracker state: exercises and history arrays plus a currentDate string.
var ErrMalformedState = errors.New("malformed tracker state")

// decodeState decodes a state blob. Only the top level is strict. Elements
// that are not objects are dropped, and ill-typed fields are coerced from
// numeric or boolean strings or left at their zero value, with a warning.
func decodeState(data []byte) (model.State, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return model.State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	var exercises, history []json.RawMessage
	if err := json.Unmarshal(top["exercises"], &exercises); err != nil || exercises == nil {
		return model.State{}, fmt.Errorf("%w: exercises is not an array", ErrMalformedState)
	}
	if err := json.Unmarshal(top["history"], &history); err != nil || history == nil {
		return model.State{}, fmt.Errorf("%w: history is not an array", ErrMalformedState)
	}
	var currentDate string
	if raw := top["currentDate"]; raw == nil || json.Unmarshal(raw, &currentDate) != nil {
		return model.State{}, fmt.Errorf("%w: currentDate is not a string", ErrMalformedState)
	}

	state := model.State{
		Exercises:   make([]model.Exercise, 0, len(exercises)),
		History:     make([]model.DailyRecord, 0, len(history)),
		CurrentDate: currentDate,
	}
	for i, raw := range exercises {
		path := fmt.Sprintf("exercises[%d]", i)
		f, ok := objectAt(path, raw)
		if !ok {
			continue
		}
		state.Exercises = append(state.Exercises, model.Exercise{
			ID:          f.text("id"),
			Name:        f.text("name"),
			Sets:        f.number("sets"),
			Reps:        f.number("reps"),
			Duration:    f.number("duration"),
			Description: f.text("description"),
		})
	}
	for i, raw := range history {
		path := fmt.Sprintf("history[%d]", i)
		f, ok := objectAt(path, raw)
		if !ok {
			continue
		}
		rec := model.DailyRecord{Date: f.text("date"), Sessions: []model.ExerciseSession{}}
		var sessions []json.RawMessage
		if raw, ok := f.values["sessions"]; ok && json.Unmarshal(raw, &sessions) != nil {
			f.warn("sessions", "is not an array, dropped")
		}
		for j, raw := range sessions {
			sf, ok := objectAt(fmt.Sprintf("%s.sessions[%d]", path, j), raw)
			if !ok {
				continue
			}
			rec.Sessions = append(rec.Sessions, model.ExerciseSession{
				ID:            sf.text("id"),
				ExerciseID:    sf.text("exerciseId"),
				StartTime:     sf.text("startTime"),
				EndTime:       sf.text("endTime"),
				Completed:     sf.flag("completed"),
				CompletedReps: sf.number("completedReps"),
				Notes:         sf.text("notes"),
			})
		}
		state.History = append(state.History, rec)
	}
	return state, nil
}

type fields struct {
	path   string
	values map[string]json.RawMessage
}

func objectAt(path string, raw json.RawMessage) (fields, bool) {
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		log.WithField("path", path).Warn("dropping entry that is not an object")
		return fields{}, false
	}
	return fields{path: path, values: values}, true
}

func (f fields) warn(name, problem string) {
	log.WithField("path", f.path+"."+name).Warn("saved field " + problem)
}

// value decodes a present, non-null field into any.
func (f fields) value(name string) (any, bool) {
	raw, ok := f.values[name]
	if !ok {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func (f fields) text(name string) string {
	v, ok := f.value(name)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	f.warn(name, "is not a string, using empty")
	return ""
}

func (f fields) number(name string) int {
	v, ok := f.value(name)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(n)
		}
	}
	f.warn(name, "is not a number, using 0")
	return 0
}

func (f fields) flag(name string) bool {
	v, ok := f.value(name)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b
		}
	}
	f.warn(name, "is not a boolean, using false")
	return false
}
