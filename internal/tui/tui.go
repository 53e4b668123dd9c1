// Package tui provides a Bubble Tea terminal user interface for syncloop.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // artwork decoding
	_ "image/png"  // artwork decoding
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/syncloop/internal/config"
	"github.com/handiism/syncloop/internal/http"
	"github.com/handiism/syncloop/internal/loopdoc"
	"github.com/handiism/syncloop/internal/render"
	"github.com/handiism/syncloop/internal/session"
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
			Padding(0, 1)

	loopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// spectrumBands is the number of bars in the spectrum display.
const spectrumBands = 16

var barLevels = []rune(" ▁▂▃▄▅▆▇█")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateLoading
	StateRunning
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   session.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	phaseBar  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Load context
	ctx    context.Context
	cancel context.CancelFunc

	// Session reference
	session *session.Session
	events  chan session.ProgressEvent

	// Options
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. A non-empty location is loaded as soon
// as the program starts.
func NewModel(settings *config.Settings, location string) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://example.com/loops/dance.json"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	ti.SetValue(location)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	phase := progress.New(progress.WithSolidFill("#4ECDC4"), progress.WithoutPercentage())
	phase.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		phaseBar:  phase,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan session.ProgressEvent, 64),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.textInput.Value() != "" {
		cmds = append(cmds, func() tea.Msg { return StartLoadMsg{} })
	}
	return tea.Batch(cmds...)
}

// Message types
type (
	// StartLoadMsg starts loading the location in the text input.
	StartLoadMsg struct{}

	// SessionMsg is sent when the loop document was parsed and the session
	// created.
	SessionMsg struct {
		Session *session.Session
		Err     error
	}

	// PreparedMsg is sent when every asset finished loading.
	PreparedMsg struct {
		Err error
	}

	// StartedMsg is sent once the song is decoded and playing.
	StartedMsg struct {
		Session *session.Session
		Err     error
	}

	// TickMsg is for periodic load progress updates.
	TickMsg struct{}

	// FrameMsg advances the sync engine by one tick.
	FrameMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		m.phaseBar.Width = m.progress.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shutdown()
			return m, tea.Quit

		case "esc", "q":
			if m.state == StateInput && msg.String() == "q" {
				break
			}
			if m.state == StateLoading {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
				return m, nil
			}
			m.shutdown()
			return m, tea.Quit

		case "enter":
			if m.state == StateInput && m.textInput.Value() != "" {
				return m.startLoad()
			}

		case "tab":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "-":
			if m.state == StateRunning {
				m.session.Transport().DecreaseVolume()
			}

		case "+", "=":
			if m.state == StateRunning {
				m.session.Transport().IncreaseVolume()
			}

		case "m":
			if m.state == StateRunning {
				m.session.Transport().ToggleMute()
			}

		case "r":
			if m.state == StateError {
				// Reset for a new loop
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.session = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.SetValue("")
				m.textInput.Focus()
				return m, nil
			}
		}

	case StartLoadMsg:
		if m.state == StateInput {
			return m.startLoad()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case SessionMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.session = msg.Session
			cmds = append(cmds, m.prepare(), m.tickProgress())
		}

	case PreparedMsg:
		m.drainEvents()
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			if m.ctx.Err() != nil {
				m.err = fmt.Errorf("cancelled by user")
			}
			break
		}
		cmds = append(cmds, m.start())

	case StartedMsg:
		m.drainEvents()
		if m.state != StateLoading || msg.Session != m.session {
			// Cancelled while decoding
			if msg.Session != nil {
				msg.Session.Stop()
			}
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.state = StateRunning
		cmds = append(cmds, m.tickFrame())

	case TickMsg:
		m.drainEvents()
		// Update progress from session
		if m.session != nil && m.state == StateLoading {
			progressCmd := m.progress.SetPercent(m.session.Progress())
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case FrameMsg:
		if m.state == StateRunning {
			m.session.Tick()
			m.drainEvents()
			cmds = append(cmds, m.tickFrame())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) startLoad() (tea.Model, tea.Cmd) {
	m.state = StateLoading
	return m, tea.Batch(m.createSession(), m.spinner.Tick)
}

// shutdown cancels loading and stops playback.
func (m *Model) shutdown() {
	m.cancel()
	if m.session != nil {
		m.session.Stop()
	}
}

// drainEvents moves queued session events into the log.
func (m *Model) drainEvents() {
	for {
		select {
		case event := <-m.events:
			m.addLog(event)
		default:
			return
		}
	}
}

func (m *Model) addLog(event session.ProgressEvent) {
	// Filter verbose messages if not in verbose mode
	if event.Level == session.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{
		Message: event.Message,
		Level:   event.Level,
	})
	// Keep only last 10 logs
	if len(m.logs) > 10 {
		m.logs = m.logs[len(m.logs)-10:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// tickFrame returns a command to tick the sync engine.
func (m Model) tickFrame() tea.Cmd {
	return tea.Tick(m.settings.TickInterval(), func(_ time.Time) tea.Msg {
		return FrameMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♫ SyncLoop"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Animations locked to the beat"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateLoading:
		b.WriteString(m.viewLoading())
	case StateRunning:
		b.WriteString(m.viewRunning())
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

	b.WriteString(subtitleStyle.Render("Enter loop document URL or path:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (tab)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Trim preset: %s | Tick rate: %d/s", m.settings.TrimPreset, m.settings.TickRate)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewLoading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Loading loop..."))
	b.WriteString("\n\n")

	if m.session != nil {
		b.WriteString(loopStyle.Render(fmt.Sprintf("  ♪ %s (%d assets)", m.session.Loop().DisplayTitle(), m.session.Loop().AssetCount())))
		b.WriteString("\n")
		b.WriteString(m.progress.View())
		b.WriteString("\n\n")
	}

	// Show logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	s := m.session
	loop := s.Loop()
	tags := s.Tags()
	status := s.Status()
	transport := s.Transport()

	title := loop.DisplayTitle()
	if !tags.IsZero() && tags.String() != "" {
		title = fmt.Sprintf("%s (%s)", title, tags.String())
	}
	b.WriteString(loopStyle.Render("♪ " + title))
	b.WriteString("\n")

	volume := fmt.Sprintf("%.0f%%", transport.Volume()*100)
	if transport.Muted() {
		volume = "muted"
	}
	info := fmt.Sprintf("Beat: %6.2f | Volume: %s", status.SongBeat, volume)
	if p := s.Player(); p != nil {
		info += fmt.Sprintf(" | Video: %.2fs/%.2fs @ %.2fx", p.CurrentTime(), p.Duration(), status.PlaybackRate)
	} else {
		info += fmt.Sprintf(" | Frame: %d", status.Frame+1)
	}
	if tags.BPM > 0 {
		info += fmt.Sprintf(" | %.0f BPM", tags.BPM)
	}
	b.WriteString(infoStyle.Render(info))
	b.WriteString("\n")

	phase := transport.Phase()
	b.WriteString(m.phaseBar.ViewAs(phase))
	b.WriteString("\n")

	if buf := transport.Buffer(); buf != nil {
		b.WriteString(subtitleStyle.Render(renderSpectrum(buf.Spectrum(phase, spectrumBands))))
		b.WriteString("\n")
	}

	if preview := m.renderPreview(); preview != "" {
		b.WriteString(boxStyle.Render(preview))
		b.WriteString("\n")
	}

	// Logs
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

// renderPreview draws the canvas, or the song artwork of video loops.
func (m Model) renderPreview() string {
	cols, rows := m.settings.PreviewColumns, m.settings.PreviewRows
	if cols <= 0 || rows <= 0 {
		return ""
	}

	if canvas, ok := m.session.Surface().(*render.Canvas); ok && m.session.Player() == nil {
		return render.Preview(canvas.Snapshot(), cols, rows)
	}

	if artwork := m.session.Tags().Artwork; len(artwork) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(artwork)); err == nil {
			return render.Preview(img, cols, rows)
		}
	}

	return ""
}

// renderSpectrum draws one bar per band level in [0,1].
func renderSpectrum(levels []float64) string {
	var b strings.Builder
	top := len(barLevels) - 1
	for _, level := range levels {
		i := int(level*float64(top) + 0.5)
		i = min(max(i, 0), top)
		b.WriteRune(barLevels[i])
		b.WriteRune(barLevels[i])
	}
	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case session.LevelError:
			style = errorStyle
			prefix = "✗"
		case session.LevelWarning:
			style = warningStyle
			prefix = "!"
		case session.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case session.LevelInfo:
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
		return "enter: start • tab: verbose • esc: quit"
	case StateLoading:
		return "esc: cancel"
	case StateRunning:
		return "-/+: volume • m: mute • q: quit"
	case StateError:
		return "r: new loop • q: quit"
	}
	return ""
}

// createSession fetches the loop document and creates the session.
func (m Model) createSession() tea.Cmd {
	location := strings.TrimSpace(m.textInput.Value())
	ctx := m.ctx
	settings := m.settings
	events := m.events

	return func() tea.Msg {
		client := http.NewClient(settings.HTTPTimeout(), settings.UserAgent)

		loop, err := loopdoc.NewParser().Load(ctx, client, location)
		if err != nil {
			return SessionMsg{Err: err}
		}

		s, err := session.New(loop, session.Options{
			Settings: settings,
			Fetcher:  client,
			OnProgress: func(event session.ProgressEvent) {
				// The UI polls events on ticks; drop them if it falls behind
				select {
				case events <- event:
				default:
				}
			},
		})
		if err != nil {
			return SessionMsg{Err: err}
		}

		return SessionMsg{Session: s}
	}
}

// prepare loads the session's assets in background.
func (m Model) prepare() tea.Cmd {
	s := m.session
	ctx := m.ctx

	return func() tea.Msg {
		if s == nil {
			return PreparedMsg{Err: fmt.Errorf("no session")}
		}
		return PreparedMsg{Err: s.Prepare(ctx)}
	}
}

// start decodes the song and starts playback in background.
func (m Model) start() tea.Cmd {
	s := m.session

	return func() tea.Msg {
		if s == nil {
			return StartedMsg{Err: fmt.Errorf("no session")}
		}
		return StartedMsg{Session: s, Err: s.Start()}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, location string) error {
	p := tea.NewProgram(NewModel(settings, location), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
