// Package catalog owns the user's exercise definitions.
package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/ptrack/internal/model"
)

// UnknownExerciseName is shown for sessions whose exercise was deleted.
const UnknownExerciseName = "Unknown Exercise"

// ValidationError reports the first invalid field of an exercise.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks name, sets, reps and duration in that order.
func Validate(d model.ExerciseDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "Exercise name is required"}
	}
	if d.Sets < 1 {
		return &ValidationError{Field: "sets", Message: "Sets must be at least 1"}
	}
	if d.Reps < 1 {
		return &ValidationError{Field: "reps", Message: "Reps must be at least 1"}
	}
	if d.Duration < 1 {
		return &ValidationError{Field: "duration", Message: "Duration must be at least 1 second"}
	}
	return nil
}

// Catalog is the ordered list of exercises.
type Catalog struct {
	items []model.Exercise
	newID func() string
}

// New returns a catalog holding a copy of items.
func New(items []model.Exercise) *Catalog {
	return &Catalog{
		items: append([]model.Exercise{}, items...),
		newID: uuid.NewString,
	}
}

// Add validates d and appends it with a fresh id.
func (c *Catalog) Add(d model.ExerciseDraft) (model.Exercise, error) {
	if err := Validate(d); err != nil {
		return model.Exercise{}, err
	}
	ex := model.Exercise{
		ID:          c.newID(),
		Name:        d.Name,
		Sets:        d.Sets,
		Reps:        d.Reps,
		Duration:    d.Duration,
		Description: d.Description,
	}
	c.items = append(c.items, ex)
	return ex, nil
}

// Update replaces the exercise with the same id. Unknown ids are ignored
// and reported as false.
func (c *Catalog) Update(ex model.Exercise) (bool, error) {
	if err := Validate(ex.Draft()); err != nil {
		return false, err
	}
	idx := c.index(ex.ID)
	if idx < 0 {
		return false, nil
	}
	c.items[idx] = ex
	return true, nil
}

// Delete removes an exercise by id. Sessions that reference it are kept.
func (c *Catalog) Delete(id string) bool {
	idx := c.index(id)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// ReplaceAll swaps the whole catalog.
func (c *Catalog) ReplaceAll(items []model.Exercise) {
	c.items = append([]model.Exercise{}, items...)
}

// Reuse adds a copy of an existing exercise under a new id.
func (c *Catalog) Reuse(id string) (model.Exercise, bool) {
	src, ok := c.Get(id)
	if !ok {
		return model.Exercise{}, false
	}
	ex, err := c.Add(src.Draft())
	if err != nil {
		return model.Exercise{}, false
	}
	return ex, true
}

// List returns the exercises in insertion order.
func (c *Catalog) List() []model.Exercise {
	return append([]model.Exercise{}, c.items...)
}

// Get looks an exercise up by id.
func (c *Catalog) Get(id string) (model.Exercise, bool) {
	idx := c.index(id)
	if idx < 0 {
		return model.Exercise{}, false
	}
	return c.items[idx], true
}

// NameOf returns the exercise name, or UnknownExerciseName for dangling ids.
func (c *Catalog) NameOf(id string) string {
	if ex, ok := c.Get(id); ok {
		return ex.Name
	}
	return UnknownExerciseName
}

// Search matches term case-insensitively against names and descriptions.
// An empty term matches everything.
func (c *Catalog) Search(term string) []model.Exercise {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.List()
	}
	var out []model.Exercise
	for _, ex := range c.items {
		if strings.Contains(strings.ToLower(ex.Name), term) ||
			strings.Contains(strings.ToLower(ex.Description), term) {
			out = append(out, ex)
		}
	}
	return out
}

// Resolve finds an exercise by id, or by case-insensitive exact name.
func (c *Catalog) Resolve(ref string) (model.Exercise, bool) {
	if ex, ok := c.Get(ref); ok {
		return ex, true
	}
	for _, ex := range c.items {
		if strings.EqualFold(ex.Name, strings.TrimSpace(ref)) {
			return ex, true
		}
	}
	return model.Exercise{}, false
}

func (c *Catalog) index(id string) int {
	for i, ex := range c.items {
		if ex.ID == id {
			return i
		}
	}
	return -1
}
