// Package dispatch sends a chunk sequence to a synthesis engine one
// chunk at a time. The backend acknowledges each chunk before the next
// one is sent, which preserves speaking order and bounds the backend's
// queue to a single outstanding request.
package dispatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/notevox/notevox/tts"
)

// Options configures one dispatch run.
type Options struct {
	// SaveDir, when set, makes the backend write the concatenated audio
	// of the whole session to a timestamped file in this directory.
	SaveDir string
	// BaseName names the saved file; defaults to "notevox".
	BaseName string
	// Autoplay plays the audio on the backend once the session finishes.
	Autoplay bool

	Speed       float64
	TrimSilence bool
	TrimAmount  float64

	// Progress, when set, is called before each chunk is sent.
	Progress func(index, total int, chunk tts.Chunk)
}

// Dispatcher drives a synthesis engine sequentially.
type Dispatcher struct {
	engine tts.Engine
	logger *log.Logger
	now    func() time.Time
}

// New creates a dispatcher over an engine.
func New(engine tts.Engine, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Dispatch sends every chunk in order within one backend session,
// waiting for the per-chunk acknowledgment before proceeding. An empty
// chunk list is not an error: there was simply nothing to speak.
func (d *Dispatcher) Dispatch(ctx context.Context, chunks []tts.Chunk, opts Options) error {
	if len(chunks) == 0 {
		d.logger.Debug("nothing to speak")
		return nil
	}

	stamp := d.now().Format("20060102-150405")
	params := tts.SessionParams{
		ID:          "notevox-" + stamp,
		SavePath:    savePath(opts, stamp),
		Autoplay:    opts.Autoplay,
		TotalChunks: len(chunks),
	}

	if err := d.engine.StartSession(ctx, params); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	d.logger.Debug("session started", "id", params.ID, "chunks", params.TotalChunks)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Progress != nil {
			opts.Progress(i, len(chunks), chunk)
		}

		req := tts.SpeakRequest{
			SessionID:   params.ID,
			Text:        chunk.Text,
			Voice:       chunk.Voice,
			Speed:       opts.Speed,
			TrimSilence: opts.TrimSilence,
			TrimAmount:  opts.TrimAmount,
			LastChunk:   i == len(chunks)-1,
		}
		if err := d.engine.Speak(ctx, req); err != nil {
			return fmt.Errorf("speak chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	d.logger.Debug("session complete", "id", params.ID)
	return nil
}

// Stop interrupts an in-flight session on the backend.
func (d *Dispatcher) Stop(ctx context.Context) error {
	return d.engine.Stop(ctx)
}

// savePath computes the backend-side output file for the session, or ""
// when saving is disabled.
func savePath(opts Options, stamp string) string {
	if opts.SaveDir == "" {
		return ""
	}
	base := opts.BaseName
	if base == "" {
		base = "notevox"
	}
	return filepath.Join(opts.SaveDir, fmt.Sprintf("%s-%s.wav", base, stamp))
}
