// Package tui provides a Bubble Tea terminal user interface for bopprep.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bopkit/bopprep/internal/command"
	"github.com/bopkit/bopprep/internal/config"
	"github.com/bopkit/bopprep/internal/convert"
	"github.com/bopkit/bopprep/internal/download"
	"github.com/bopkit/bopprep/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateRunning
	StateComplete
	StateError
)

// Mode selects the operation the UI runs.
type Mode int

const (
	ModeProcess Mode = iota
	ModeTemplates
)

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// Input field indices.
const (
	fieldDir = iota
	fieldDataset
	fieldNprocs
	fieldRoot
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   model.ProgressLevel
}

// eventSink collects progress events from the background operation until
// the next tick drains them.
type eventSink struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (s *eventSink) add(e model.ProgressEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *eventSink) drain() []model.ProgressEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	mode     Mode
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	target   string
	err      error

	// Operation context
	ctx    context.Context
	cancel context.CancelFunc

	sink      *eventSink
	processor *convert.Processor

	// run numbers operations so a late DoneMsg from an abandoned one is ignored.
	run int

	// newRunner builds the runner for external commands; tests replace it.
	newRunner func(sink *eventSink) command.Runner

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings) Model {
	newInput := func(placeholder string, width int) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 500
		ti.Width = width
		return ti
	}

	inputs := make([]textinput.Model, 4)
	inputs[fieldDir] = newInput("/data/bop/ycbv", 60)
	inputs[fieldDataset] = newInput("ycbv", 20)
	inputs[fieldNprocs] = newInput(strconv.Itoa(settings.Nprocs), 6)
	inputs[fieldRoot] = newInput("/data/gigapose", 60)
	inputs[fieldRoot].SetValue(settings.Machine.RootDir)
	inputs[fieldDir].Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		mode:      ModeProcess,
		inputs:    inputs,
		focus:     fieldDir,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		newRunner: defaultRunner,
	}
}

// defaultRunner keeps child output off the terminal and shows it as
// verbose log lines instead.
func defaultRunner(sink *eventSink) command.Runner {
	return &command.ExecRunner{OnOutput: func(stream command.Stream, line string) {
		sink.add(model.ProgressEvent{Message: line, Level: model.LevelVerbose})
	}}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// DoneMsg is sent when the operation numbered Run finishes.
	DoneMsg struct {
		Run int
		Err error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// fields returns the input indices shown in the current mode.
func (m Model) fields() []int {
	if m.mode == ModeTemplates {
		return []int{fieldRoot}
	}
	return []int{fieldDir, fieldDataset, fieldNprocs}
}

func (m *Model) setFocus(field int) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = field
	m.inputs[field].Focus()
}

func (m *Model) cycleFocus() {
	fields := m.fields()
	for i, f := range fields {
		if f == m.focus {
			m.setFocus(fields[(i+1)%len(fields)])
			return
		}
	}
	m.setFocus(fields[0])
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateRunning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab":
			if m.state == StateInput {
				m.cycleFocus()
				return m, nil
			}

		case "ctrl+t":
			if m.state == StateInput {
				if m.mode == ModeProcess {
					m.mode = ModeTemplates
				} else {
					m.mode = ModeProcess
				}
				m.setFocus(m.fields()[0])
				return m, nil
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				cmd, err := m.start()
				if err != nil {
					m.err = err
					return m, nil
				}
				return m, tea.Batch(cmd, m.spinner.Tick, m.tickProgress())
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new run
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.target = ""
				m.processor = nil
				m.sink = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.setFocus(m.fields()[0])
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DoneMsg:
		// A run cancelled with esc may finish after the user started over.
		if msg.Run != m.run {
			return m, nil
		}
		m.collectLogs()
		if m.state != StateRunning {
			return m, nil
		}
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateRunning {
			m.collectLogs()
			var percent float64
			if m.processor != nil {
				done, total := m.processor.Progress()
				percent = float64(done) / float64(total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update the focused text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// collectLogs moves pending events into the visible log.
func (m *Model) collectLogs() {
	if m.sink == nil {
		return
	}
	for _, e := range m.sink.drain() {
		if e.Level == model.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = append(m.logs, LogEntry{Message: e.Message, Level: e.Level})
	}
	// Keep only the last maxLogs entries
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// start validates the inputs and returns the command running the operation.
func (m *Model) start() (tea.Cmd, error) {
	m.sink = &eventSink{}
	runner := m.newRunner(m.sink)
	ctx := m.ctx

	if m.mode == ModeTemplates {
		settings := *m.settings
		settings.Machine.RootDir = strings.TrimSpace(m.inputs[fieldRoot].Value())
		if err := settings.RequireRoot(); err != nil {
			return nil, err
		}
		if err := settings.ValidateTemplates(); err != nil {
			return nil, err
		}
		manager := download.NewManagerFromSettings(&settings, runner, m.sink.add)
		m.target = manager.Bundle().TemplatesDir
		return m.launch(func() error {
			status, err := manager.Run(ctx)
			if err == nil && status != download.StatusInstalled {
				err = fmt.Errorf("templates not installed: %s", status)
			}
			return err
		}), nil
	}

	if err := m.settings.ValidateProcess(); err != nil {
		return nil, err
	}
	nprocs := m.settings.Nprocs
	if v := strings.TrimSpace(m.inputs[fieldNprocs].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("nprocs: %q is not a number", v)
		}
		nprocs = n
	}
	ds, err := model.NewDataset(
		strings.TrimSpace(m.inputs[fieldDir].Value()),
		strings.TrimSpace(m.inputs[fieldDataset].Value()),
		nprocs,
	)
	if err != nil {
		return nil, err
	}

	processor := convert.NewProcessor(ds, convert.OptionsFromSettings(m.settings), runner, m.sink.add)
	m.processor = processor
	m.target = ds.SplitDir
	return m.launch(func() error {
		return processor.Run(ctx)
	}), nil
}

// launch moves the model into the running state under a new run number and
// returns the command performing op.
func (m *Model) launch(op func() error) tea.Cmd {
	m.run++
	run := m.run
	m.state = StateRunning
	m.err = nil
	return func() tea.Msg {
		return DoneMsg{Run: run, Err: op()}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("BOP Dataset Prep"))
	b.WriteString("\n")
	if m.mode == ModeTemplates {
		b.WriteString(dimStyle.Render("Install rendered templates"))
	} else {
		b.WriteString(dimStyle.Render("Convert a dataset to WebDataset shards"))
	}
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := map[int]string{
		fieldDir:     "Dataset directory:",
		fieldDataset: "Dataset name:",
		fieldNprocs:  "Processes:",
		fieldRoot:    "Machine root directory:",
	}
	for _, f := range m.fields() {
		b.WriteString(subtitleStyle.Render(labels[f]))
		b.WriteString("\n")
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n\n")
	}

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}
	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Show command output (ctrl+o)\n", verboseCheck))

	if m.mode == ModeProcess {
		name := strings.TrimSpace(m.inputs[fieldDataset].Value())
		if name != "" {
			b.WriteString("\n")
			b.WriteString(dimStyle.Render(fmt.Sprintf("Split: %s", model.SplitFor(name))))
			b.WriteString("\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.mode == ModeTemplates {
		b.WriteString(subtitleStyle.Render("Installing templates..."))
	} else {
		b.WriteString(subtitleStyle.Render("Converting dataset..."))
	}
	b.WriteString("\n\n")

	if m.processor != nil {
		done, total := m.processor.Progress()
		b.WriteString(m.progress.View())
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf("Steps: %d/%d", done, total)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf("✨ Done!\n\nOutput: %s", m.target))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case model.LevelError:
			style = errorStyle
			prefix = "✗"
		case model.LevelWarning:
			style = warningStyle
			prefix = "!"
		case model.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case model.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next field • ctrl+t: switch operation • ctrl+o: verbose • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new run • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
