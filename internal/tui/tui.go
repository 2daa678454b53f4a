// Package tui provides a Bubble Tea terminal user interface for rocksonic.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/koriwi/rocksonic/internal/download"
	"github.com/koriwi/rocksonic/internal/model"
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

// DefaultMP3Bitrate is used by the mp3 toggle when the settings name none.
const DefaultMP3Bitrate = 128

// maxLogs is the number of report lines kept on screen.
const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateConnecting
	StateSyncing
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Starter connects to the server and prepares a session for opts.
type Starter func(ctx context.Context, opts download.Options, onProgress func(download.ProgressEvent)) (*download.Session, error)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	base      download.Options
	start     Starter
	logs      []LogEntry
	result    *download.Result
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	session *download.Session
	events  chan download.ProgressEvent

	completed int
	total     int

	// Options
	flat     bool
	mp3      bool
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. base holds the configured session
// options; the toggles start from its values.
func NewModel(base download.Options, start Starter) Model {
	ti := textinput.New()
	ti.Placeholder = model.FavoritesLibrary
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		base:      base,
		start:     start,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		flat:      base.Flat,
		mp3:       base.Mode.Transcoding(),
		playlist:  base.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one session event.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// SessionReadyMsg is sent when the connection attempt finishes.
	SessionReadyMsg struct {
		Session *download.Session
		Err     error
	}

	// SyncDoneMsg is sent when the session returns.
	SyncDoneMsg struct {
		Result *download.Result
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
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
			if m.state == StateSyncing || m.state == StateConnecting {
				m.cancel()
				m.state = StateError
				m.err = errors.New("cancelled by user")
			}

		case "tab":
			if m.state == StateInput {
				if m.textInput.Focused() {
					m.textInput.Blur()
				} else {
					m.textInput.Focus()
				}
				return m, nil
			}

		case "enter":
			if m.state == StateInput {
				m.state = StateConnecting
				m.events = make(chan download.ProgressEvent, 64)
				return m, tea.Batch(m.connect(m.Options()), m.spinner.Tick)
			}

		case "f":
			if m.state == StateInput && !m.textInput.Focused() {
				m.flat = !m.flat
				return m, nil
			}

		case "m":
			if m.state == StateInput && !m.textInput.Focused() {
				m.mp3 = !m.mp3
				return m, nil
			}

		case "p":
			if m.state == StateInput && !m.textInput.Focused() {
				m.playlist = !m.playlist
				return m, nil
			}

		case "v":
			if m.state == StateInput && !m.textInput.Focused() {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.result = nil
				m.session = nil
				m.events = nil
				m.completed = 0
				m.total = 0
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case SessionReadyMsg:
		if m.state != StateConnecting {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.session = msg.Session
		m.state = StateSyncing
		cmds = append(cmds, m.sync(), waitForEvent(m.events), m.tickProgress())

	case SyncDoneMsg:
		if m.session != nil {
			m.completed, m.total = m.session.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errors.New("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
			m.result = msg.Result
		}

	case TickMsg:
		if m.session != nil && m.state == StateSyncing {
			m.completed, m.total = m.session.GetProgress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.completed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// Options returns the session options for the current input and toggles.
func (m Model) Options() download.Options {
	opts := m.base
	opts.Playlist = strings.TrimSpace(m.textInput.Value())
	if opts.Playlist == "" {
		opts.Playlist = model.FavoritesLibrary
	}
	opts.Flat = m.flat
	opts.CreatePlaylist = m.playlist
	switch {
	case !m.mp3:
		opts.Mode = model.Passthrough()
	case !opts.Mode.Transcoding():
		opts.Mode = model.Transcode(DefaultMP3Bitrate)
	}
	return opts
}

// State returns the current UI state.
func (m Model) State() State {
	return m.state
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next session event.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ rocksonic"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Mirror a Subsonic library for offline players"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateConnecting:
		b.WriteString(m.viewConnecting())
	case StateSyncing:
		b.WriteString(m.viewSyncing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Playlist id (empty for favorites):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	mp3Label := fmt.Sprintf("Transcode to MP3 %dk (m)", DefaultMP3Bitrate)
	if m.base.Mode.Transcoding() {
		mp3Label = fmt.Sprintf("Transcode to MP3 %dk (m)", m.base.Mode.Bitrate)
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Flat layout (f)\n", checkbox(m.flat))
	fmt.Fprintf(&b, "  %s %s\n", checkbox(m.mp3), mp3Label)
	fmt.Fprintf(&b, "  %s Create playlist (p)\n", checkbox(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose/debug output (v)\n", checkbox(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output directory: %s", m.base.Root)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewConnecting() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Connecting to the server..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSyncing() string {
	var b strings.Builder

	var percent float64
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Tracks: %d/%d", m.completed, m.total)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	if m.result == nil {
		return boxStyle.Render("✨ Sync Complete!")
	}

	s := m.result.Summary
	text := fmt.Sprintf(
		"✨ Sync Complete!\n\n"+
			"Library: %s\n"+
			"Tracks: %d\n"+
			"Downloaded: %d\n"+
			"Converted: %d\n"+
			"Covers embedded: %d\n"+
			"Up to date: %d\n"+
			"Failed: %d",
		m.result.Library, s.Total, s.Downloaded, s.Converted, s.Embedded, s.Skipped, s.Failed,
	)
	if m.result.PlaylistPath != "" {
		text += "\nPlaylist: " + m.result.PlaylistPath
	}

	return boxStyle.Render(text) + "\n" + m.renderLogs()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, entry := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch entry.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + entry.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		if m.textInput.Focused() {
			return "enter: start • tab: options • esc: quit"
		}
		return "enter: start • tab: edit id • f: flat • m: mp3 • p: playlist • v: verbose • esc: quit"
	case StateConnecting, StateSyncing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new sync • q: quit"
	}
	return ""
}

// connect runs the Starter in the background.
func (m Model) connect(opts download.Options) tea.Cmd {
	ctx, start, events := m.ctx, m.start, m.events
	return func() tea.Msg {
		if start == nil {
			return SessionReadyMsg{Err: errors.New("no session starter")}
		}
		session, err := start(ctx, opts, func(event download.ProgressEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		})
		return SessionReadyMsg{Session: session, Err: err}
	}
}

// sync runs the session in the background.
func (m Model) sync() tea.Cmd {
	ctx, session, events := m.ctx, m.session, m.events
	return func() tea.Msg {
		result, err := session.Run(ctx)
		close(events)
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// Run starts the TUI application.
func Run(base download.Options, start Starter) error {
	p := tea.NewProgram(NewModel(base, start), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
