// Package tts holds the shared types for the notevox narration pipeline:
// the chunk model produced by the segmentation engine, the voice lookup
// contract it consumes, and the synthesis engine interface the dispatcher
// drives.
package tts

import "context"

// Chunk is one length-bounded, single-voice unit of text ready to be sent
// to a synthesis request. Chunks are emitted in speaking order.
type Chunk struct {
	Text  string // Non-empty, trimmed text to speak
	Voice string // Canonical voice identifier (e.g. "af_bella")
}

// Voice describes one synthesis voice known to the backend.
type Voice struct {
	ID       string // Canonical identifier used by the backend
	Name     string // Human-readable name
	Language string // Language code (e.g. "en-US")
	Gender   string // Voice gender
}

// VoiceResolver maps short inline voice codes to canonical voice
// identifiers. Implementations must be case-insensitive and must never
// fail: unknown codes resolve to the configured default voice.
type VoiceResolver interface {
	// Resolve returns the canonical identifier for a short code and
	// whether the code was known. The returned identifier is the default
	// voice when the code is unknown.
	Resolve(code string) (string, bool)

	// Default returns the canonical identifier of the default voice.
	Default() string
}

// SessionParams describes one synthesis session covering an ordered run
// of chunks.
type SessionParams struct {
	ID          string // Session identifier, unique per dispatch
	SavePath    string // Optional path the backend writes the final audio to
	Autoplay    bool   // Play audio on the backend once generated
	TotalChunks int    // Number of chunks the session will carry
}

// SpeakRequest is one per-chunk synthesis request.
type SpeakRequest struct {
	SessionID   string
	Text        string
	Voice       string
	Speed       float64
	TrimSilence bool
	TrimAmount  float64
	LastChunk   bool // Marks the final chunk of the session
}

// Engine is a synthesis backend. Implementations must make Speak block
// until the backend acknowledges the chunk as generated; the dispatcher
// relies on that to keep dispatch strictly sequential.
type Engine interface {
	// Ping verifies the backend is reachable and responsive.
	Ping(ctx context.Context) error

	// StartSession opens a synthesis session for an ordered run of chunks.
	StartSession(ctx context.Context, params SessionParams) error

	// Speak sends one chunk and waits for its generated acknowledgment.
	Speak(ctx context.Context, req SpeakRequest) error

	// Stop interrupts synthesis and clears backend session state.
	Stop(ctx context.Context) error

	// Close releases the connection and any child process resources.
	Close() error
}
