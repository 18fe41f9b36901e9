// Package audio plays rendered speech clips through the default output
// device using PortAudio.
package audio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/metcalfc/aloud/internal/tts"
	"github.com/metcalfc/aloud/internal/wav"
)

const (
	bufferSize   = 1024
	tickInterval = 250 * time.Millisecond
)

// Player streams one clip at a time to the speakers. Starting a clip while
// another is playing halts the old one first, so at most one output stream
// is ever active. Progress is reported through the event sink: TickEvents
// with the elapsed seconds roughly four times a second, and one EndEvent at
// the natural end of the clip. All events carry the generation token of the
// Start call that produced them. Delivery runs on a dedicated dispatcher
// goroutine, never on the feeder, so a sink that is busy pausing the player
// cannot deadlock against it.
type Player struct {
	sink   tts.Sink
	logger *slog.Logger
	events chan tts.Event

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	elapsed float64
}

// NewPlayer creates a player delivering events to sink.
func NewPlayer(sink tts.Sink, logger *slog.Logger) *Player {
	p := &Player{
		sink:   sink,
		logger: logger,
		events: make(chan tts.Event, 16),
	}
	go p.dispatch()
	return p
}

// dispatch forwards queued events to the sink for the lifetime of the
// player.
func (p *Player) dispatch() {
	for e := range p.events {
		p.sink(e)
	}
}

// Start begins playing clip from fromSeconds. If fromSeconds lies beyond
// the clip's duration, playback starts from 0. Any clip already playing is
// halted first.
func (p *Player) Start(clip *tts.Clip, fromSeconds float64, gen uint64) error {
	p.Pause()

	info, err := wav.Parse(clip.Data)
	if err != nil {
		return fmt.Errorf("unplayable clip: %w", err)
	}
	if info.BitsPerSample != 16 {
		return fmt.Errorf("unsupported bit depth %d", info.BitsPerSample)
	}

	duration := clip.Seconds()
	if fromSeconds < 0 || fromSeconds >= duration {
		fromSeconds = 0
	}

	samples := decodePCM16(clip.Data[info.DataOffset : info.DataOffset+info.DataLen])

	// Seek by dropping whole frames before the start offset.
	startFrame := int(fromSeconds * float64(info.SampleRate))
	startSample := startFrame * info.Channels
	if startSample > len(samples) {
		startSample = 0
		fromSeconds = 0
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	p.mu.Lock()
	p.stop = stop
	p.done = done
	p.elapsed = fromSeconds
	p.mu.Unlock()

	p.logger.Debug("starting clip playback",
		"from_seconds", fromSeconds,
		"duration_seconds", duration,
		"sample_rate", info.SampleRate,
	)

	go p.feed(samples[startSample:], info, fromSeconds, gen, stop, done)
	return nil
}

// Pause halts playback synchronously: the feeder goroutine has exited when
// Pause returns. Events already queued for dispatch may still be delivered
// afterwards; consumers discard them by generation token.
func (p *Player) Pause() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

// Position returns the elapsed seconds of the current (or last) clip.
func (p *Player) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elapsed
}

func (p *Player) setElapsed(s float64) {
	p.mu.Lock()
	p.elapsed = s
	p.mu.Unlock()
}

func (p *Player) feed(samples []float32, info wav.Info, baseSeconds float64, gen uint64, stop, done chan struct{}) {
	defer close(done)

	if err := portaudio.Initialize(); err != nil {
		p.logger.Error("failed to initialize PortAudio", "error", err)
		p.emit(stop, tts.ErrorEvent{Gen: gen, Err: err})
		return
	}
	defer portaudio.Terminate()

	buffer := make([]float32, bufferSize)
	stream, err := portaudio.OpenDefaultStream(
		0,             // input channels (none)
		info.Channels, // output channels
		float64(info.SampleRate),
		bufferSize,
		&buffer,
	)
	if err != nil {
		p.logger.Error("failed to open output stream", "error", err)
		p.emit(stop, tts.ErrorEvent{Gen: gen, Err: err})
		return
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		p.logger.Error("failed to start output stream", "error", err)
		p.emit(stop, tts.ErrorEvent{Gen: gen, Err: err})
		return
	}
	defer stream.Stop()

	samplesPerSecond := float64(info.SampleRate * info.Channels)
	lastTick := time.Now()
	pos := 0

	for pos < len(samples) {
		select {
		case <-stop:
			return
		default:
		}

		for i := 0; i < bufferSize; i++ {
			if pos+i < len(samples) {
				buffer[i] = samples[pos+i]
			} else {
				buffer[i] = 0
			}
		}
		pos += bufferSize

		if err := stream.Write(); err != nil {
			p.logger.Error("failed to write to stream", "error", err)
			p.emit(stop, tts.ErrorEvent{Gen: gen, Err: err})
			return
		}

		elapsed := baseSeconds + float64(pos)/samplesPerSecond
		p.setElapsed(elapsed)

		if time.Since(lastTick) >= tickInterval {
			lastTick = time.Now()
			p.emit(stop, tts.TickEvent{Gen: gen, Seconds: elapsed})
		}
	}

	p.emit(stop, tts.EndEvent{Gen: gen})
}

// emit queues an event for dispatch unless playback was halted. The queue
// send aborts once stop closes, so a slow or blocked consumer can never
// hold up the feeder, and a pending Pause always completes.
func (p *Player) emit(stop chan struct{}, e tts.Event) {
	select {
	case <-stop:
	case p.events <- e:
	}
}

func decodePCM16(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		out[i] = float32(s) / 32768.0
	}
	return out
}
