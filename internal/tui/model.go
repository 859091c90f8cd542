// Package tui provides the Bubble Tea tracker interface.
package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ptrack/internal/app"
	"github.com/verte-zerg/ptrack/internal/catalog"
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/store"
	"github.com/verte-zerg/ptrack/internal/timer"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

const progressWidth = 12

// tickMsg carries the timer generation it was scheduled for.
type tickMsg struct {
	gen uint64
}

// Model implements the Bubble Tea tracker UI.
type Model struct {
	app *app.App

	width  int
	height int

	cursor  int
	mode    mode
	form    exerciseForm
	status  string
	isError bool
	ticking bool
}

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	timerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#40A9FF")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a tracker TUI model.
func NewModel(a *app.App) *Model {
	m := &Model{
		app:  a,
		form: newExerciseForm(),
	}
	if a.LoadError() != nil {
		m.setStatus("Saved data is unreadable; it is kept until your first change", true)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		cmd := m.handleTick(msg)
		m.reportSaveError()
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		next, cmd := m.handleKey(msg)
		m.reportSaveError()
		return next, cmd
	default:
		if m.mode == modeForm {
			return m, m.form.update(msg)
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m, m.updateForm(msg)
	case modeConfirmDelete:
		m.updateConfirm(msg)
		return m, nil
	default:
		return m.updateList(msg)
	}
}

// reportSaveError keeps a failed save visible until a later save succeeds.
func (m *Model) reportSaveError() {
	err := m.app.SaveError()
	switch {
	case err == nil:
	case errors.Is(err, store.ErrValueTooLarge):
		m.setStatus("Not saved: data exceeds the memory store entry limit, raise --memory-mb", true)
	default:
		m.setStatus("Not saved: "+err.Error(), true)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.mode {
	case modeForm:
		body = m.form.view()
	default:
		body = m.renderExercises()
	}
	parts := []string{m.renderHeader(), "", body, "", m.renderFooter()}
	out := strings.Join(parts, "\n")
	if m.width == 0 || m.height == 0 {
		return out
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, out)
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.setStatus("", false)
	exercises := m.app.Exercises()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1, len(exercises))
	case "down", "j":
		m.moveCursor(1, len(exercises))
	case "left", "h":
		m.app.PreviousDay()
	case "right", "l":
		if !m.app.NextDay() {
			m.setStatus("Already at today", false)
		}
	case "T", "0":
		m.app.ResetToToday()
	case "a":
		m.form.reset(model.ExerciseDraft{Sets: 3, Reps: 10, Duration: 30}, "")
		m.mode = modeForm
		return m, m.form.focus(fieldName)
	}
	ex, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "enter", "s":
		m.startSelected(ex)
	case " ", "t":
		if !m.app.ToggleRepTimer(ex.ID) {
			if p, _ := m.app.Progress(ex.ID); p.Action == app.ActionNextSet {
				m.setStatus("Set complete! Press enter to start the next set", false)
			} else {
				m.setStatus("Start the exercise first", true)
			}
		}
		return m, m.ensureTicking()
	case "c":
		if m.app.CancelExercise(ex.ID) {
			m.setStatus("Session cancelled", false)
		}
	case "e":
		m.form.reset(ex.Draft(), ex.ID)
		m.mode = modeForm
		return m, m.form.focus(fieldName)
	case "r":
		if copied, ok := m.app.ReuseExercise(ex.ID); ok {
			m.setStatus(fmt.Sprintf("Added a copy of %s", copied.Name), false)
		}
	case "d":
		m.mode = modeConfirmDelete
	}
	return m, nil
}

func (m *Model) startSelected(ex model.Exercise) {
	p, ok := m.app.Progress(ex.ID)
	if !ok {
		return
	}
	switch p.Action {
	case app.ActionDone:
		m.setStatus("All sets completed", false)
	case app.ActionResume:
		m.setStatus("Set in progress: press space to time the next rep", false)
	default:
		if _, ok := m.app.StartSession(ex.ID); ok {
			m.setStatus(fmt.Sprintf("Started %s", ex.Name), false)
		}
	}
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.form.focus(m.form.index + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.form.focus(m.form.index - 1)
	case tea.KeyEnter:
		m.submitForm()
		return nil
	}
	return m.form.update(msg)
}

func (m *Model) submitForm() {
	draft := m.form.draft()
	var err error
	if m.form.editID != "" {
		_, err = m.app.UpdateExercise(model.Exercise{
			ID:          m.form.editID,
			Name:        draft.Name,
			Sets:        draft.Sets,
			Reps:        draft.Reps,
			Duration:    draft.Duration,
			Description: draft.Description,
		})
	} else {
		_, err = m.app.AddExercise(draft)
	}
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) {
			m.form.err = verr.Message
		} else {
			m.form.err = err.Error()
		}
		return
	}
	if m.form.editID == "" {
		m.cursor = len(m.app.Exercises()) - 1
	}
	m.mode = modeList
	m.setStatus("Saved", false)
}

func (m *Model) updateConfirm(msg tea.KeyMsg) {
	m.mode = modeList
	if msg.String() != "y" {
		return
	}
	ex, ok := m.selected()
	if !ok {
		return
	}
	m.app.DeleteExercise(ex.ID)
	m.moveCursor(0, len(m.app.Exercises()))
	m.setStatus(fmt.Sprintf("Deleted %s", ex.Name), false)
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	m.ticking = false
	t := m.app.Timer()
	if msg.gen == t.Generation() && t.Snapshot().IsRunning() {
		focus := m.app.TimerFocus()
		before, _ := m.app.Progress(focus)
		t.Tick()
		after, _ := m.app.Progress(focus)
		switch {
		case after.CompletedSets > before.CompletedSets:
			m.setStatus("Set complete!", false)
		case after.CompletedReps() > before.CompletedReps():
			m.setStatus("Rep complete", false)
		}
	}
	return m.ensureTicking()
}

func (m *Model) ensureTicking() tea.Cmd {
	t := m.app.Timer()
	if m.ticking || !t.Snapshot().IsRunning() {
		return nil
	}
	m.ticking = true
	gen := t.Generation()
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) selected() (model.Exercise, bool) {
	exercises := m.app.Exercises()
	if m.cursor < 0 || m.cursor >= len(exercises) {
		return model.Exercise{}, false
	}
	return exercises[m.cursor], true
}

func (m *Model) moveCursor(delta, count int) {
	m.cursor += delta
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.status = msg
	m.isError = isError
}

func (m *Model) renderHeader() string {
	label := m.app.ActiveDateLabel()
	full := m.app.ActiveDateFull()
	line := fmt.Sprintf("< %s · %s >", label, full)
	if !m.app.IsActiveToday() {
		line += mutedStyle.Render("  (T: back to today)")
	}
	return titleStyle.Render("PT Tracker") + "  " + line
}

func (m *Model) renderExercises() string {
	exercises := m.app.Exercises()
	if len(exercises) == 0 {
		return mutedStyle.Render("No exercises yet. Press a to add one.")
	}
	blocks := make([]string, 0, len(exercises))
	for i, ex := range exercises {
		p, ok := m.app.Progress(ex.ID)
		if !ok {
			continue
		}
		blocks = append(blocks, renderExercise(p, m.app.TimerFor(ex.ID), m.app.TimerLabel(ex.ID), i == m.cursor))
	}
	if m.mode == modeConfirmDelete {
		if ex, ok := m.selected(); ok {
			blocks = append(blocks, errorStyle.Render(fmt.Sprintf("Delete %s? (y/n)", ex.Name)))
		}
	}
	return strings.Join(blocks, "\n")
}

func renderExercise(p app.Progress, snap timer.Snapshot, timerLabel string, selected bool) string {
	marker := "  "
	style := normalStyle
	if selected {
		marker = "> "
		style = selectedStyle
	}
	reps := fmt.Sprintf("%d", p.Exercise.Reps)
	if p.HasOpen {
		reps = fmt.Sprintf("%d/%d", p.CompletedReps(), p.Exercise.Reps)
	}
	action := p.Action.String()
	if p.Action == app.ActionDone {
		action = doneStyle.Render(action)
	}
	lines := []string{
		marker + style.Render(p.Exercise.Name) + fmt.Sprintf("  Sets %d/%d  Reps %s  %s/rep  %s  [%s]",
			p.CompletedSets, p.Exercise.Sets, reps, dates.FormatDuration(p.Exercise.Duration),
			progressBar(p.SetRatio(), progressWidth), action),
	}
	if p.HasOpen {
		remaining := snap.Remaining
		lines = append(lines, "    "+timerStyle.Render(dates.FormatDuration(remaining))+"  "+
			progressBar(p.RepRatio(), progressWidth)+"  "+mutedStyle.Render(timerLabel))
	}
	if p.Exercise.Description != "" && selected {
		lines = append(lines, "    "+mutedStyle.Render(p.Exercise.Description))
	}
	return strings.Join(lines, "\n")
}

func progressBar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(math.Round(ratio * float64(width)))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func (m *Model) renderFooter() string {
	help := "j/k: select  enter: start set  space: rep timer  c: cancel  a: add  e: edit  r: copy  d: delete  h/l: day  q: quit"
	if m.mode == modeForm {
		help = "tab/shift+tab: next field  enter: save  esc: cancel"
	}
	out := footerStyle.Render(help)
	if m.status != "" {
		style := mutedStyle
		if m.isError {
			style = errorStyle
		}
		out = style.Render(m.status) + "\n" + out
	}
	return out
}
