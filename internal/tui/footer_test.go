package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ptrack/internal/app"
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/store"
	"github.com/verte-zerg/ptrack/internal/timer"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	cal := dates.Calendar{Now: func() time.Time { return now }, Location: time.UTC}
	gw := store.NewGateway(store.NewMemory(8<<20), "")
	return app.New(context.Background(), app.Deps{Store: gw, Calendar: cal})
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRenderFooterShowsStatus(t *testing.T) {
	m := &Model{status: "Set complete!"}
	out := m.renderFooter()
	if !containsAll(out, []string{"Set complete!", "space: rep timer", "q: quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
	m.mode = modeForm
	if !strings.Contains(m.renderFooter(), "esc: cancel") {
		t.Fatalf("expected form help")
	}
}

func TestProgressBar(t *testing.T) {
	cases := []struct {
		ratio float64
		want  string
	}{
		{0, "...."},
		{0.5, "##.."},
		{1, "####"},
		{2, "####"},
	}
	for _, tc := range cases {
		if got := progressBar(tc.ratio, 4); got != tc.want {
			t.Fatalf("ratio %.1f: expected %q, got %q", tc.ratio, tc.want, got)
		}
	}
}

func TestRenderExerciseShowsProgress(t *testing.T) {
	p := app.Progress{
		Exercise:      model.Exercise{Name: "Squats", Sets: 3, Reps: 10, Duration: 30},
		CompletedSets: 1,
		Open:          model.ExerciseSession{CompletedReps: 4},
		HasOpen:       true,
		Action:        app.ActionResume,
	}
	out := renderExercise(p, timer.Snapshot{State: timer.StatePaused, Remaining: 25}, "Resume Timer", true)
	if !containsAll(out, []string{"Squats", "Sets 1/3", "Reps 4/10", "00:30/rep", "Resume Exercise", "00:25", "Resume Timer"}) {
		t.Fatalf("unexpected exercise render: %s", out)
	}
}

func TestTrackerFlow(t *testing.T) {
	a := newTestApp(t)
	m := NewModel(a)

	m.Update(keyRunes("a"))
	if m.mode != modeForm {
		t.Fatalf("expected form mode")
	}
	m.Update(keyRunes("Plank"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeList {
		t.Fatalf("expected list mode after save, form error %q", m.form.err)
	}
	exercises := a.Exercises()
	if len(exercises) != 1 || exercises[0].Name != "Plank" || exercises[0].Sets != 3 {
		t.Fatalf("unexpected exercises: %+v", exercises)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := a.OpenSessionFor(exercises[0].ID, a.ActiveDate()); !ok {
		t.Fatalf("expected open session")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatalf("expected tick command when timer starts")
	}
	gen := a.Timer().Generation()
	for i := 0; i < 30; i++ {
		m.Update(tickMsg{gen: gen})
	}
	p, _ := a.Progress(exercises[0].ID)
	if p.CompletedReps() != 1 {
		t.Fatalf("expected one rep, got %d", p.CompletedReps())
	}
	if m.status != "Rep complete" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestStaleTicksAreDropped(t *testing.T) {
	a := newTestApp(t)
	ex, err := a.AddExercise(model.ExerciseDraft{Name: "Bridge", Sets: 1, Reps: 1, Duration: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	a.StartSession(ex.ID)
	a.ToggleRepTimer(ex.ID)
	stale := a.Timer().Generation() - 1

	m := NewModel(a)
	m.Update(tickMsg{gen: stale})
	if got := a.Timer().Snapshot().Remaining; got != 5 {
		t.Fatalf("stale tick advanced the timer: %d", got)
	}
}

func TestFormRejectsInvalidInput(t *testing.T) {
	m := NewModel(newTestApp(t))
	m.Update(keyRunes("a"))
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.mode != modeForm {
		t.Fatalf("expected to stay in form")
	}
	if m.form.err != "Exercise name is required" {
		t.Fatalf("unexpected form error %q", m.form.err)
	}
}

func TestNavigationHeader(t *testing.T) {
	a := newTestApp(t)
	m := NewModel(a)
	if !strings.Contains(m.renderHeader(), "Today") {
		t.Fatalf("expected today label: %s", m.renderHeader())
	}
	m.Update(keyRunes("h"))
	if !strings.Contains(m.renderHeader(), "Yesterday") {
		t.Fatalf("expected yesterday label: %s", m.renderHeader())
	}
	m.Update(keyRunes("l"))
	m.Update(keyRunes("l"))
	if m.status != "Already at today" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func TestFailedSaveShowsInStatus(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	cal := dates.Calendar{Now: func() time.Time { return now }, Location: time.UTC}
	gw := store.NewGateway(store.NewMemory(512*1024), "")
	a := app.New(context.Background(), app.Deps{Store: gw, Calendar: cal})
	m := NewModel(a)

	if _, err := a.AddExercise(model.ExerciseDraft{
		Name: "Stretch", Sets: 1, Reps: 1, Duration: 10, Description: strings.Repeat("x", 8192),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.Update(keyRunes("j"))
	if !m.isError || !strings.Contains(m.status, "raise --memory-mb") {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestUnreadableStateShowsInStatus(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	cal := dates.Calendar{Now: func() time.Time { return now }, Location: time.UTC}
	kv := store.NewMemory(8 << 20)
	if err := kv.Set(context.Background(), store.DefaultKey, []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	a := app.New(context.Background(), app.Deps{Store: store.NewGateway(kv, ""), Calendar: cal})
	m := NewModel(a)
	if !m.isError || !strings.Contains(m.status, "unreadable") {
		t.Fatalf("unexpected status %q", m.status)
	}
}
