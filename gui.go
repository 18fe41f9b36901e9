//go:build gui

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/aloud/internal/api"
	"github.com/metcalfc/aloud/internal/config"
	"github.com/metcalfc/aloud/internal/logging"
	"github.com/metcalfc/aloud/internal/playback"
	"github.com/metcalfc/aloud/internal/text"
	"github.com/metcalfc/aloud/internal/tts"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// chunkSegments renders the current chunk as rich text with the spoken
// word emphasized.
func chunkSegments(chunkText string, word int) []widget.RichTextSegment {
	words := text.Words(chunkText)
	if word < 0 || word >= len(words) {
		return []widget.RichTextSegment{
			&widget.TextSegment{Text: chunkText, Style: widget.RichTextStyleParagraph},
		}
	}

	var segs []widget.RichTextSegment
	if word > 0 {
		segs = append(segs, &widget.TextSegment{
			Text:  strings.Join(words[:word], " ") + " ",
			Style: widget.RichTextStyleInline,
		})
	}
	segs = append(segs, &widget.TextSegment{
		Text: words[word],
		Style: widget.RichTextStyle{
			TextStyle: fyne.TextStyle{Bold: true},
			ColorName: theme.ColorNamePrimary,
			Inline:    true,
		},
	})
	if word+1 < len(words) {
		segs = append(segs, &widget.TextSegment{
			Text:  " " + strings.Join(words[word+1:], " "),
			Style: widget.RichTextStyleInline,
		})
	}
	return segs
}

func main() {
	mode := flag.String("mode", "", "Playback mode: live or clip (default: live)")
	rate := flag.Float64("rate", 0, "Speech rate multiplier, 0.5 to 2.0")
	voice := flag.String("voice", "", "Voice identifier for the synthesizer")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Aloud - Document Read-Aloud Player (GUI)\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  aloud [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
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

	appState, err := newApp(context.Background(), flag.Arg(0), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	engine := appState.engine

	a := fyneapp.New()
	w := a.NewWindow("aloud - Read Aloud")

	statusLabel := widget.NewLabel(engine.Status())
	statusLabel.Alignment = fyne.TextAlignCenter

	chunkDisplay := widget.NewRichText()
	chunkDisplay.Wrapping = fyne.TextWrapWord

	progressBar := widget.NewProgressBar()
	progressBar.TextFormatter = func() string {
		pos := engine.Position()
		return playback.ProgressLine(pos.Chunk, engine.ChunkCount())
	}

	updateDisplay := func() {
		pos := engine.Position()
		statusLabel.SetText(fmt.Sprintf("%s | %.1fx", engine.Status(), engine.Rate()))

		chunkDisplay.Segments = chunkSegments(engine.CurrentChunk(), pos.Word)
		chunkDisplay.Refresh()

		if engine.ChunkCount() > 0 {
			progressBar.SetValue(float64(pos.Chunk+1) / float64(engine.ChunkCount()))
		}
	}

	// Engine calls stay on the fyne main thread; synthesis events are
	// funneled onto it here.
	appState.relay.Set(func(ev tts.Event) {
		fyne.Do(func() {
			engine.HandleEvent(ev)
			updateDisplay()
		})
	})

	playButton := widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), func() {
		engine.Play()
		updateDisplay()
	})
	pauseButton := widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), func() {
		engine.Pause()
		updateDisplay()
	})
	stopButton := widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), func() {
		engine.Stop()
		updateDisplay()
	})
	prevButton := widget.NewButtonWithIcon("Prev", theme.MediaSkipPreviousIcon(), func() {
		engine.Prev()
		updateDisplay()
	})
	nextButton := widget.NewButtonWithIcon("Next", theme.MediaSkipNextIcon(), func() {
		engine.Next()
		updateDisplay()
	})
	restartButton := widget.NewButtonWithIcon("Restart", theme.MediaReplayIcon(), func() {
		engine.Reset()
		updateDisplay()
	})

	rateSlider := widget.NewSlider(tts.MinRate, tts.MaxRate)
	rateSlider.Step = 0.1
	rateSlider.Value = engine.Rate()
	rateSlider.OnChanged = func(v float64) {
		engine.SetRate(v)
		updateDisplay()
	}
	rateRow := container.NewBorder(nil, nil, widget.NewLabel("Rate"), nil, rateSlider)

	transport := container.NewHBox(
		prevButton, playButton, pauseButton, stopButton, nextButton, restartButton,
	)

	bottom := container.NewVBox(
		progressBar,
		container.NewCenter(transport),
		rateRow,
	)

	w.SetContent(container.NewBorder(
		statusLabel,
		bottom,
		nil, nil,
		container.NewVScroll(chunkDisplay),
	))

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			if engine.State() == playback.StatePlaying {
				engine.Pause()
			} else {
				engine.Play()
			}
			updateDisplay()

		case fyne.KeyLeft:
			engine.Prev()
			updateDisplay()

		case fyne.KeyRight:
			engine.Next()
			updateDisplay()

		case fyne.KeyQ:
			if engine.State() == playback.StatePlaying {
				engine.Pause()
			}
			appState.shutdown()
			a.Quit()
		}
	})

	if cfg.APIAddr != "" {
		ctrl := newGUIController(engine, appState, updateDisplay)
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

	w.SetOnClosed(func() {
		if engine.State() == playback.StatePlaying {
			engine.Pause()
		}
		appState.shutdown()
	})

	w.Resize(fyne.NewSize(800, 600))
	updateDisplay()
	w.ShowAndRun()
}

// guiController serves the control API by funneling commands onto the fyne
// main thread, the engine's owner.
type guiController struct {
	engine  *playback.Engine
	app     *app
	refresh func()
}

func newGUIController(engine *playback.Engine, a *app, refresh func()) *guiController {
	return &guiController{engine: engine, app: a, refresh: refresh}
}

func (c *guiController) Dispatch(cmd api.Command) error {
	fyne.Do(func() {
		switch cmd {
		case api.CmdPlay:
			c.engine.Play()
		case api.CmdPause:
			c.engine.Pause()
		case api.CmdStop:
			c.engine.Stop()
		case api.CmdNext:
			c.engine.Next()
		case api.CmdPrev:
			c.engine.Prev()
		case api.CmdReset:
			c.engine.Reset()
		}
		c.refresh()
	})
	return nil
}

func (c *guiController) Snapshot() api.Snapshot {
	var snap api.Snapshot
	fyne.DoAndWait(func() {
		pos := c.engine.Position()
		snap = api.Snapshot{
			State:      c.engine.State().String(),
			Status:     c.engine.Status(),
			Chunk:      pos.Chunk,
			ChunkCount: c.engine.ChunkCount(),
			Word:       pos.Word,
			Seconds:    pos.Seconds,
			Rate:       c.engine.Rate(),
			Voice:      c.engine.Voice(),
			ChunkText:  c.engine.CurrentChunk(),
		}
	})
	return snap
}
