//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/aloud/internal/api"
	"github.com/metcalfc/aloud/internal/config"
	"github.com/metcalfc/aloud/internal/logging"
	"github.com/metcalfc/aloud/internal/playback"
	"github.com/metcalfc/aloud/internal/tts"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	spokenWordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F87")).
			Underline(true)

	chunkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(1, 2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	finishedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// speechMsg carries a synthesis event into the update loop, which is the
// engine's single owner.
type speechMsg struct {
	event tts.Event
}

// commandMsg carries a remote transport command from the control API.
type commandMsg struct {
	cmd api.Command
}

// controller bridges the control API to the update loop: commands go in
// through the program's message queue, state comes out of the snapshot the
// model publishes after every update.
type controller struct {
	mu   sync.Mutex
	prog *tea.Program
	snap api.Snapshot
}

func (c *controller) Dispatch(cmd api.Command) error {
	c.mu.Lock()
	prog := c.prog
	c.mu.Unlock()
	if prog == nil {
		return fmt.Errorf("player not running")
	}
	prog.Send(commandMsg{cmd: cmd})
	return nil
}

func (c *controller) Snapshot() api.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

func (c *controller) setProgram(p *tea.Program) {
	c.mu.Lock()
	c.prog = p
	c.mu.Unlock()
}

func (c *controller) publish(snap api.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

type model struct {
	app      *app
	ctrl     *controller
	bar      progress.Model
	quitting bool
	width    int
	height   int
}

func newModel(a *app, ctrl *controller) model {
	return model{
		app:    a,
		ctrl:   ctrl,
		bar:    progress.New(progress.WithDefaultGradient()),
		width:  80,
		height: 24,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	e := m.app.engine

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if e.State() == playback.StatePlaying {
				e.Pause()
			} else {
				e.Play()
			}

		case "s":
			e.Stop()

		case "left":
			e.Prev()

		case "right":
			e.Next()

		case "r":
			e.Reset()

		case "+", "=", "up":
			e.SetRate(e.Rate() + 0.1)

		case "-", "down":
			e.SetRate(e.Rate() - 0.1)

		case "q", "Q", "ctrl+c":
			if e.State() == playback.StatePlaying {
				e.Pause()
			}
			m.app.shutdown()
			m.quitting = true
			m.publish()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = msg.Width - 4

	case speechMsg:
		e.HandleEvent(msg.event)

	case commandMsg:
		switch msg.cmd {
		case api.CmdPlay:
			e.Play()
		case api.CmdPause:
			e.Pause()
		case api.CmdStop:
			e.Stop()
		case api.CmdNext:
			e.Next()
		case api.CmdPrev:
			e.Prev()
		case api.CmdReset:
			e.Reset()
		}
	}

	m.publish()
	return m, nil
}

// publish mirrors engine state into the controller for the API to read.
func (m model) publish() {
	e := m.app.engine
	pos := e.Position()
	m.ctrl.publish(api.Snapshot{
		State:      e.State().String(),
		Status:     e.Status(),
		Chunk:      pos.Chunk,
		ChunkCount: e.ChunkCount(),
		Word:       pos.Word,
		Seconds:    pos.Seconds,
		Rate:       e.Rate(),
		Voice:      e.Voice(),
		ChunkText:  e.CurrentChunk(),
	})
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	e := m.app.engine
	if e.Empty() {
		return statusStyle.Render(e.Status()) + "\n"
	}

	pos := e.Position()

	status := e.Status()
	switch e.State() {
	case playback.StatePaused:
		status = pausedStyle.Render(status)
	case playback.StateStopped:
		if status == "Finished" {
			status = finishedStyle.Render(status)
		}
	}
	header := statusStyle.Render(fmt.Sprintf("%s | %s | %.1fx",
		playback.ProgressLine(pos.Chunk, e.ChunkCount()),
		status,
		e.Rate(),
	))

	body := e.CurrentChunk()
	if e.State() == playback.StatePlaying || e.State() == playback.StatePaused {
		body = playback.HighlightWord(body, pos.Word, spokenWordStyle.Render)
	}
	body = chunkStyle.Width(m.width).Render(body)

	pct := float64(pos.Chunk+1) / float64(e.ChunkCount())
	bar := "  " + m.bar.ViewAs(pct)

	controls := controlsStyle.Render("SPACE: play/pause  S: stop  ←/→: chunk  R: restart  +/-: rate  Q: quit")

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(bar)
	sb.WriteString("\n\n")
	sb.WriteString(controls)
	return sb.String()
}

func main() {
	mode := flag.String("mode", "", "Playback mode: live or clip (default: live)")
	rate := flag.Float64("rate", 0, "Speech rate multiplier, 0.5 to 2.0")
	voice := flag.String("voice", "", "Voice identifier for the synthesizer")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Aloud - Document Read-Aloud Player\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  aloud [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  aloud book.epub               Read an EPUB aloud\n")
		fmt.Fprintf(os.Stderr, "  aloud -rate 1.5 paper.pdf     Read a PDF at 1.5x speed\n")
		fmt.Fprintf(os.Stderr, "  aloud -mode clip notes.md     Pre-render all audio up front\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Play/pause\n")
		fmt.Fprintf(os.Stderr, "  S        Stop (restart current chunk)\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Previous/next chunk\n")
		fmt.Fprintf(os.Stderr, "  R        Restart from the beginning\n")
		fmt.Fprintf(os.Stderr, "  +/-      Adjust speech rate\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit (position is saved)\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("aloud %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *rate != 0 {
		cfg.Rate = *rate
	}
	if *voice != "" {
		cfg.DefaultVoice = *voice
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: No input file. Try: aloud -h")
		os.Exit(1)
	}

	a, err := newApp(context.Background(), flag.Arg(0), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctrl := &controller{}
	p := tea.NewProgram(newModel(a, ctrl), tea.WithAltScreen())
	ctrl.setProgram(p)
	a.relay.Set(func(ev tts.Event) {
		p.Send(speechMsg{event: ev})
	})

	if cfg.APIAddr != "" {
		srv := api.New(cfg, logger, ctrl)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("control server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
