// Package ui renders live pipeline progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"weave/internal/pipeline"
)

// aspectRow is one line of the view: an aspect and the layer it runs at.
type aspectRow struct {
	name    string
	layer   int
	status  pipeline.Status
	elapsed time.Duration
	err     string
}

type progressModel struct {
	title   string
	events  <-chan pipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []aspectRow
	byName  map[string]int
	stage   pipeline.Stage // last whole-run stage seen
	width   int
	done    bool
	failed  int
}

type (
	eventMsg pipeline.Event
	closeMsg struct{}
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	styleLayer    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleByStatus = map[pipeline.Status]lipgloss.Style{
		pipeline.StatusQueued:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		pipeline.StatusWorking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		pipeline.StatusDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		pipeline.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
)

// NewProgressModel renders one row per aspect, in layer order, fed by
// events until the channel closes.
func NewProgressModel(title string, aspects []string, events <-chan pipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleByStatus[pipeline.StatusWorking]

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		byName:  make(map[string]int, len(aspects)),
		width:   80,
	}
	for i, name := range aspects {
		m.row(name).layer = i + 1
	}
	return m
}

// row returns the row of aspect name, appending one for aspects that were
// not announced up front.
func (m *progressModel) row(name string) *aspectRow {
	i, ok := m.byName[name]
	if !ok {
		i = len(m.rows)
		m.rows = append(m.rows, aspectRow{name: name, status: pipeline.StatusQueued})
		m.byName[name] = i
	}
	return &m.rows[i]
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closeMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(pipeline.Event(msg)), m.next())
	case closeMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// закрывает только интерфейс, прогон продолжается
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) applyEvent(ev pipeline.Event) tea.Cmd {
	if ev.Unit == "" {
		m.stage = ev.Stage
		return m.bar.SetPercent(m.percent())
	}
	r := m.row(ev.Unit)
	if ev.Layer > 0 {
		r.layer = ev.Layer
	}
	r.status = ev.Status
	r.elapsed = ev.Elapsed
	if ev.Status == pipeline.StatusError {
		m.failed++
		if ev.Err != nil {
			r.err = ev.Err.Error()
		}
	}
	return m.bar.SetPercent(m.percent())
}

// percent gives advising 80% of the bar, split evenly between aspects;
// lowering and printing fill the rest.
func (m *progressModel) percent() float64 {
	const advise = 0.8
	switch m.stage {
	case pipeline.StageLower:
		return advise
	case pipeline.StagePrint:
		return 0.95
	}
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		switch r.status {
		case pipeline.StatusDone, pipeline.StatusError:
			sum++
		case pipeline.StatusWorking:
			sum += 0.5
		}
	}
	return advise * sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	header := m.title
	if label := stageVerb(m.stage); label != "" {
		header += " (" + label + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render(header) + "\n\n")
	nameWidth := max(m.width-24, 20)
	for _, r := range m.rows {
		status := string(r.status)
		if r.status == pipeline.StatusWorking {
			status = "advising"
		}
		line := r.name
		if r.err != "" {
			line += ": " + r.err
		} else if r.elapsed > 0 {
			line += fmt.Sprintf(" (%s)", r.elapsed.Round(time.Microsecond))
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			styleLayer.Render(fmt.Sprintf("L%-3d", r.layer)),
			styleByStatus[r.status].Render(fmt.Sprintf("%9s", status)),
			truncate(line, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	if m.failed > 0 {
		b.WriteString(styleByStatus[pipeline.StatusError].Render(fmt.Sprintf("%d aspect(s) reported failures", m.failed)) + "\n")
	}
	return b.String()
}

func stageVerb(s pipeline.Stage) string {
	switch s {
	case pipeline.StageLoad:
		return "loading"
	case pipeline.StageAdvise:
		return "advising"
	case pipeline.StageLower:
		return "lowering"
	case pipeline.StagePrint:
		return "printing"
	}
	return ""
}

// truncate cuts value to width terminal cells, marking the cut with "..."
// when there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
