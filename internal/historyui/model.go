// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/model"
	"github.com/verte-zerg/ptrack/internal/stats"
)

const (
	tabSessions = iota
	tabOverview
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	dayStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea history UI.
type Model struct {
	cal     dates.Calendar
	history []model.DailyRecord
	nameOf  func(string) string

	days      []string
	dayIndex  int
	tabs      []string
	activeTab int

	sessions table.Model
	overview viewport.Model

	width  int
	height int
}

// NewModel constructs a history UI starting at date, or at the most recent
// day when date has no record.
func NewModel(cal dates.Calendar, history []model.DailyRecord, nameOf func(string) string, date string) *Model {
	m := &Model{
		cal:      cal,
		history:  history,
		nameOf:   nameOf,
		tabs:     []string{"Sessions", "Overview"},
		overview: viewport.New(0, 0),
	}
	for _, rec := range history {
		m.days = append(m.days, rec.Date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(m.days)))
	for i, d := range m.days {
		if d == date {
			m.dayIndex = i
		}
	}
	m.sessions = table.New(table.WithColumns(sessionColumns()), table.WithHeight(1))
	m.sessions.SetStyles(sessionTableStyles())
	m.sessions.Focus()
	m.refresh()
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
		m.updateLayout()
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "left", "h":
			m.moveDay(1)
			return m, nil
		case "right", "l":
			m.moveDay(-1)
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabSessions {
			m.sessions, cmd = m.sessions.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderTabs(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// SelectedDate returns the day shown on the sessions tab.
func (m *Model) SelectedDate() string {
	if len(m.days) == 0 {
		return ""
	}
	return m.days[m.dayIndex]
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.sessions.Focus()
	} else {
		m.sessions.Blur()
	}
}

// moveDay steps through days; positive delta goes back in time.
func (m *Model) moveDay(delta int) {
	next := m.dayIndex + delta
	if next < 0 || next >= len(m.days) {
		return
	}
	m.dayIndex = next
	m.refresh()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.sessions.SetWidth(m.width)
	m.sessions.SetHeight(maxInt(1, bodyHeight-2))
}

func (m *Model) refresh() {
	rec := m.record(m.SelectedDate())
	rows := make([]table.Row, 0, len(rec.Sessions))
	for _, r := range stats.Rows(m.cal, rec, m.nameOf) {
		rows = append(rows, table.Row{r.Exercise, r.Start, r.End, r.Duration, r.Status})
	}
	m.sessions.SetRows(rows)
	m.sessions.GotoTop()

	var buf bytes.Buffer
	report := stats.BuildReport(m.cal, m.history, 14)
	if err := stats.RenderOverview(&buf, report); err != nil {
		m.overview.SetContent(fmt.Sprintf("Failed to render overview: %v", err))
		return
	}
	for _, sum := range report.Summaries {
		buf.WriteString(fmt.Sprintf("\n%-28s %2d done  %s", m.cal.FormatFull(sum.Date), sum.Completed, dates.FormatDuration(sum.TotalSeconds)))
	}
	m.overview.SetContent(buf.String())
}

func (m *Model) record(date string) model.DailyRecord {
	for _, rec := range m.history {
		if rec.Date == date {
			return rec
		}
	}
	return model.DailyRecord{Date: date}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if len(m.days) == 0 {
		return "No exercise history found. Start your first exercise session to track your progress!"
	}
	if m.activeTab == tabOverview {
		return m.overview.View()
	}
	return m.renderDayHeader() + "\n\n" + tableMutedStyle.Render(m.sessions.View())
}

func (m *Model) renderDayHeader() string {
	date := m.SelectedDate()
	sum := stats.SummarizeDay(m.record(date))
	title := fmt.Sprintf("%s (%s)", m.cal.FormatFull(date), m.cal.RelativeLabel(date))
	detail := fmt.Sprintf("Completed Sessions: %d  Total Time: %s  Day %d of %d",
		sum.Completed, dates.FormatDuration(sum.TotalSeconds), m.dayIndex+1, len(m.days))
	return dayStyle.Render(truncateLine(title, m.width)) + "\n" + headerStyle.Render(truncateLine(detail, m.width))
}

func (m *Model) renderHelp() string {
	help := "Days: left/right  Tabs: tab  Scroll: up/down/pgup/pgdn  Quit: q"
	return headerStyle.Render(truncateLine(help, m.width))
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Exercise", Width: 24},
		{Title: "Start Time", Width: 10},
		{Title: "End Time", Width: 10},
		{Title: "Duration", Width: 8},
		{Title: "Status", Width: 11},
	}
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:minInt(width, len(runes))])
	}
	for lipgloss.Width(string(runes)) > width-3 && len(runes) > 0 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
