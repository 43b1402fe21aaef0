// Package ui implements the interactive watch mode: a live table of
// upcoming visibility windows with a countdown to the next pass.
package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/natalnetwork/iss-horizon/internal/geo"
	"github.com/natalnetwork/iss-horizon/internal/predict"
	"github.com/natalnetwork/iss-horizon/internal/report"
)

const (
	// refreshInterval is how often predictions are recomputed.
	refreshInterval = 10 * time.Minute

	// tickInterval drives the countdown display.
	tickInterval = time.Second
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// windowsMsg carries a completed prediction run into the update loop.
type windowsMsg struct {
	windows []predict.Window
	err     error
}

// tickMsg drives the per-second countdown.
type tickMsg time.Time

// Model is the Bubble Tea model for watch mode.
type Model struct {
	engine *predict.Engine
	loc    geo.Location
	hours  int

	table       table.Model
	windows     []predict.Window
	lastRefresh time.Time
	now         time.Time
	err         error
	loading     bool
	width       int
}

// New creates the watch-mode model. hours is the prediction look-ahead.
func New(engine *predict.Engine, loc geo.Location, hours int) Model {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Start", Width: 8},
		{Title: "End", Width: 8},
		{Title: "Dur", Width: 7},
		{Title: "Peak", Width: 6},
		{Title: "From", Width: 5},
		{Title: "To", Width: 5},
		{Title: "Rating", Width: 6},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)

	return Model{
		engine:  engine,
		loc:     loc,
		hours:   hours,
		table:   t,
		now:     time.Now(),
		loading: true,
	}
}

// Init starts the first prediction run and the countdown ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tick())
}

func (m Model) refreshCmd() tea.Cmd {
	engine, loc, hours := m.engine, m.loc, m.hours
	return func() tea.Msg {
		windows, err := engine.WindowsNextHours(loc.Observer(), hours)
		return windowsMsg{windows: windows, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loading = true
			return m, m.refreshCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case windowsMsg:
		m.loading = false
		m.err = msg.err
		m.lastRefresh = time.Now()
		if msg.err == nil {
			m.windows = msg.windows
			m.table.SetRows(m.rows())
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tick()}
		if !m.loading && time.Since(m.lastRefresh) > refreshInterval {
			m.loading = true
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, 0, len(m.windows))
	for _, w := range m.windows {
		start := w.Start.In(m.loc.Timezone)
		end := w.End.In(m.loc.Timezone)
		rows = append(rows, table.Row{
			start.Format("2006-01-02"),
			start.Format("15:04:05"),
			end.Format("15:04:05"),
			report.FormatDuration(w.Duration),
			fmt.Sprintf("%.0f°", w.PeakElevationDeg),
			w.StartDirection,
			w.EndDirection,
			predict.StarsText(w.Stars),
		})
	}
	return rows
}

// nextWindow returns the first window that has not ended yet, or nil.
func (m Model) nextWindow() *predict.Window {
	for i := range m.windows {
		if m.windows[i].End.After(m.now) {
			return &m.windows[i]
		}
	}
	return nil
}

// View renders the watch screen.
func (m Model) View() string {
	header := titleStyle.Render("ISS HORIZON") + " " +
		subtitleStyle.Render(fmt.Sprintf("%s (%.4f, %.4f)",
			m.loc.ResolvedName, m.loc.Latitude, m.loc.Longitude))

	status := m.statusLine()

	help := helpStyle.Render("r refresh · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.table.View(),
		"",
		status,
		help,
	)
}

func (m Model) statusLine() string {
	if m.err != nil {
		return errorStyle.Render("error: " + m.err.Error())
	}
	if m.loading {
		return subtitleStyle.Render("computing visibility windows...")
	}

	next := m.nextWindow()
	if next == nil {
		return subtitleStyle.Render(
			fmt.Sprintf("no passes in the next %d hours", m.hours))
	}

	if next.Start.Before(m.now) {
		remaining := next.End.Sub(m.now).Round(time.Second)
		return countdownStyle.Render(
			fmt.Sprintf("VISIBLE NOW — sets in %s toward %s",
				remaining, next.EndDirection))
	}

	until := next.Start.Sub(m.now).Round(time.Second)
	return countdownStyle.Render(
		fmt.Sprintf("next pass in %s — rises %s, peak %.0f°",
			until, next.StartDirection, next.PeakElevationDeg))
}
