package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ptrack/internal/model"
)

const (
	fieldName = iota
	fieldSets
	fieldReps
	fieldDuration
	fieldDescription
)

// exerciseForm edits a new or existing exercise.
type exerciseForm struct {
	inputs []textinput.Model
	index  int
	editID string
	err    string
}

func newExerciseForm() exerciseForm {
	f := exerciseForm{
		inputs: []textinput.Model{
			newInput("Name: "),
			newInput("Sets: "),
			newInput("Reps: "),
			newInput("Duration (s): "),
			newInput("Description: "),
		},
	}
	f.reset(model.ExerciseDraft{Sets: 3, Reps: 10, Duration: 30}, "")
	return f
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *exerciseForm) reset(d model.ExerciseDraft, editID string) {
	f.editID = editID
	f.err = ""
	f.inputs[fieldName].SetValue(d.Name)
	f.inputs[fieldSets].SetValue(strconv.Itoa(d.Sets))
	f.inputs[fieldReps].SetValue(strconv.Itoa(d.Reps))
	f.inputs[fieldDuration].SetValue(strconv.Itoa(d.Duration))
	f.inputs[fieldDescription].SetValue(d.Description)
}

func (f *exerciseForm) title() string {
	if f.editID != "" {
		return "Edit Exercise"
	}
	return "Add New Exercise"
}

func (f *exerciseForm) focus(idx int) tea.Cmd {
	count := len(f.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	f.index = idx
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.index {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *exerciseForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.index], cmd = f.inputs[f.index].Update(msg)
	return cmd
}

// draft reads the inputs. Numbers that do not parse become zero and are
// rejected by validation.
func (f *exerciseForm) draft() model.ExerciseDraft {
	return model.ExerciseDraft{
		Name:        strings.TrimSpace(f.inputs[fieldName].Value()),
		Sets:        atoiOrZero(f.inputs[fieldSets].Value()),
		Reps:        atoiOrZero(f.inputs[fieldReps].Value()),
		Duration:    atoiOrZero(f.inputs[fieldDuration].Value()),
		Description: strings.TrimSpace(f.inputs[fieldDescription].Value()),
	}
}

func (f *exerciseForm) view() string {
	lines := []string{titleStyle.Render(f.title())}
	for _, input := range f.inputs {
		lines = append(lines, input.View())
	}
	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err))
	}
	return strings.Join(lines, "\n")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
