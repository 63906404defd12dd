package tts

import "errors"

// Common errors for the narration pipeline.
var (
	// Configuration errors
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrInvalidChunkLength = errors.New("max chunk length must be positive")
	ErrInvalidSpeed       = errors.New("speed out of range")

	// Voice table errors
	ErrVoicesDirNotFound = errors.New("voices directory not found")

	// Engine errors
	ErrEngineNotConnected = errors.New("synthesis engine is not connected")
	ErrEngineClosed       = errors.New("synthesis engine has been closed")
	ErrBackendError       = errors.New("backend reported an error")
	ErrBackendUnexpected  = errors.New("unexpected backend response")
	ErrBackendStartFailed = errors.New("backend process failed to start")

	// Dispatch errors
	ErrDispatchInProgress = errors.New("a dispatch is already in progress")
	ErrSessionNotStarted  = errors.New("session has not been started")
)

// IsBackendError reports whether err originated from the synthesis
// backend rather than from the local transport or configuration. Backend
// errors carry the backend's own message and should be shown to the user
// verbatim; transport errors are retried by the connection layer.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendError)
}
