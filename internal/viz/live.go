package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/session"
)

const historyCapacity = 600

type TickMsg time.Time

// Model hosts one playback session in the terminal. Every session call happens
// inside Update, so the controller only ever sees the bubbletea goroutine.
type Model struct {
	sess      *session.Session
	canvas    *Canvas
	theme     Theme
	log       *slog.Logger
	progress  []float64
	recorder  *Recorder
	recording bool
	showHelp  bool
	options   *optionsForm
	notice    string
	err       error
}

// NewModel wraps a session whose RenderSink is canvas.
func NewModel(sess *session.Session, canvas *Canvas, theme Theme, log *slog.Logger) Model {
	return Model{
		sess:     sess,
		canvas:   canvas,
		theme:    theme,
		log:      log,
		progress: make([]float64, 0, historyCapacity),
	}
}

// Err reports the failure that ended the program, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.sess.Interval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update maps keys to playback commands and runs one session tick per TickMsg.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.options != nil {
			return m.optionsKey(msg)
		}
		return m.playbackKey(msg)
	case TickMsg:
		if err := m.sess.Tick(); err != nil {
			m.err = err
			m.log.Error("playback aborted", "error", err)
			return m, tea.Quit
		}
		m.record()
		return m, m.tick()
	}
	return m, nil
}

func (m Model) playbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.Status()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		if st.State == playback.Paused {
			m.send(playback.PlayForward())
		} else {
			m.send(playback.Pause())
		}
	case "f":
		m.send(playback.PlayForward())
	case "b":
		m.send(playback.PlayBackward())
	case "p":
		m.send(playback.Pause())
	case "]", "right", "l":
		m.send(playback.GoNext())
	case "[", "left", "h":
		m.send(playback.GoBack())
	case "r":
		m.send(playback.Restart())
	case "R":
		m.send(playback.Reset())
	case "+", "=":
		m.send(playback.SetRate(nextRate(st.Config.StepsPerSecond, 1)))
	case "-", "_":
		m.send(playback.SetRate(nextRate(st.Config.StepsPerSecond, -1)))
	case "o":
		m.options = newOptionsForm(st.Config)
	case "t":
		m.theme = NextTheme(m.theme)
		m.notice = "theme: " + m.theme.Name
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) send(cmd playback.Command) {
	if err := m.sess.Send(cmd); err != nil {
		m.notice = err.Error()
		m.log.Warn("command rejected", "command", cmd.Type.String(), "error", err)
		return
	}
	m.notice = ""
}

// nextRate moves the rate one notch in dir, with finer notches at low rates.
func nextRate(rate, dir int) int {
	step := 1
	switch {
	case rate > 100 || (rate == 100 && dir > 0):
		step = 100
	case rate > 10 || (rate == 10 && dir > 0):
		step = 10
	}
	next := rate + dir*step
	return min(max(next, config.MinStepsPerSecond), config.MaxStepsPerSecond)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recorder = NewRecorder(m.theme)
		m.recording = true
		m.notice = "recording"
		return
	}
	m.recording = false
	path := fmt.Sprintf("gridsearch-%s.gif", time.Now().Format("20060102-150405"))
	if err := m.recorder.Save(path); err != nil {
		m.notice = err.Error()
		m.log.Warn("recording not saved", "error", err)
		return
	}
	m.notice = "saved " + path
	m.log.Info("recording saved", "path", path)
}

func (m *Model) record() {
	st := m.sess.Status()
	pct := 0.0
	if st.Len > 0 {
		pct = 100 * float64(st.Cursor) / float64(st.Len)
	}
	m.progress = append(m.progress, pct)
	if len(m.progress) > historyCapacity {
		m.progress = m.progress[1:]
	}
	if m.recording {
		m.recorder.Capture(m.canvas)
	}
}

// View renders the grid beside the status panel.
func (m Model) View() string {
	if m.options != nil {
		return m.options.View(m.theme)
	}

	st := m.sess.Status()
	canvasView := canvasStyle.Render(m.canvas.Render(m.theme))

	var s strings.Builder
	s.WriteString(GradientText("GRIDSEARCH", m.theme.Primary, m.theme.Accent) + "\n\n")
	s.WriteString(m.statusLine(st) + "\n\n")
	if len(m.progress) > 1 {
		chart := asciigraph.Plot(m.progress, asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.LowerBound(0), asciigraph.UpperBound(100), asciigraph.Caption("Shown %"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	pct := 0.0
	if st.Len > 0 {
		pct = float64(st.Cursor) / float64(st.Len)
	}
	s.WriteString(ProgressBar(pct, 30, m.theme) + "\n\n")
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Algorithm", st.Algorithm)
	row("Start", st.Start.String())
	row("Cursor", fmt.Sprintf("%d / %d", st.Cursor, st.Len))
	if st.Complete {
		row("Trace", "complete")
	} else {
		row("Trace", "searching")
	}
	row("Rate", fmt.Sprintf("%d/s (%s)", st.Config.StepsPerSecond, m.sess.Interval()))
	row("Grid", fmt.Sprintf("%dx%d", st.Config.GridSize.X, st.Config.GridSize.Y))
	row("Theme", m.theme.Name)
	if st.Hangs > 0 {
		s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Warning).Render(fmt.Sprintf("%d worker(s) abandoned", st.Hangs)) + "\n")
	}
	if m.notice != "" {
		s.WriteString("\n" + KeyHint.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render("\n" + Separator(30) + "\nSP:Play/Pause f/b:Direction\n[ ]:Step r:Restart R:Reset\n+/-:Rate o:Options ?:Help q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return GlassPanel.Render(helpText) + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine(st playback.Status) string {
	var status string
	switch st.State {
	case playback.PlayingForward:
		status = StatusRunning.Render("▶ PLAYING")
	case playback.PlayingBackward:
		status = StatusRunning.Render("◀ REWINDING")
	default:
		status = StatusPaused.Render("❚❚ PAUSED")
	}
	if m.recording {
		status += "  " + StatusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Frames()))
	}
	return status
}

const helpText = `KEYBOARD SHORTCUTS

Space    - Play forward / pause
f / b    - Play forward / backward
p        - Pause
] / →    - Step forward
[ / ←    - Step back
r        - Restart the same trace
R        - Reset with a new start cell
+ / -    - Faster / slower
o        - Edit grid options
t        - Cycle themes
g        - Toggle GIF recording
?        - Toggle this help
q        - Quit`

// Run starts the program on the alternate screen and returns the error that
// ended playback, if any.
func Run(m Model) error {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok {
		return fm.Err()
	}
	return nil
}
