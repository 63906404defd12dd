package kokoro

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/notevox/notevox/tts"
)

// Backend manages the Kokoro child process: the Python script that loads
// the model and serves the websocket protocol. Managing the process is
// optional; most setups run the backend separately and only the Client
// is used.
type Backend struct {
	cmd    *exec.Cmd
	logger *log.Logger

	waitOnce sync.Once
	waitErr  error
	done     chan struct{}
}

// StartBackend launches the backend process. The script receives the
// model and voices paths as positional arguments and logs to stderr;
// its log lines are forwarded to the given logger.
func StartBackend(cfg tts.KokoroConfig, logger *log.Logger) (*Backend, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Script == "" {
		return nil, fmt.Errorf("%w: no backend script configured", tts.ErrBackendStartFailed)
	}

	cmd := exec.Command(cfg.Python, cfg.Script, cfg.ModelPath, cfg.VoicesPath)
	cmd.Stdout = io.Discard

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrBackendStartFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", tts.ErrBackendStartFailed, err)
	}

	b := &Backend{
		cmd:    cmd,
		logger: logger,
		done:   make(chan struct{}),
	}

	go b.forwardLogs(stderr)
	go func() {
		b.waitOnce.Do(func() { b.waitErr = cmd.Wait() })
		close(b.done)
	}()

	logger.Debug("kokoro backend started", "pid", cmd.Process.Pid, "script", cfg.Script)
	return b, nil
}

// forwardLogs relays the backend's stderr lines to the logger.
func (b *Backend) forwardLogs(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.logger.Debug("backend: " + scanner.Text())
	}
}

// Running reports whether the process is still alive.
func (b *Backend) Running() bool {
	select {
	case <-b.done:
		return false
	default:
		return true
	}
}

// Stop asks the process to shut down and kills it if it does not exit
// within the grace period.
func (b *Backend) Stop(grace time.Duration) error {
	if !b.Running() {
		return nil
	}

	if err := b.cmd.Process.Signal(os.Interrupt); err != nil {
		// Process may have exited between the check and the signal.
		if !b.Running() {
			return nil
		}
		return fmt.Errorf("signal backend: %w", err)
	}

	select {
	case <-b.done:
		return nil
	case <-time.After(grace):
		b.logger.Warn("backend did not exit, killing", "pid", b.cmd.Process.Pid)
		if err := b.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill backend: %w", err)
		}
		<-b.done
		return nil
	}
}
