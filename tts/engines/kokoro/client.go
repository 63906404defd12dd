// Package kokoro implements the synthesis engine interface over the
// Kokoro backend's websocket protocol. The backend is a child Python
// process serving ws://host:port; requests are JSON messages and every
// speak request is acknowledged with a terminal status before the next
// one is sent.
package kokoro

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/notevox/notevox/tts"
)

// Client drives one Kokoro backend over a persistent websocket
// connection. All request/response exchanges are serialized; the
// dispatcher's one-chunk-at-a-time contract depends on that.
type Client struct {
	cfg    tts.KokoroConfig
	logger *log.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

var _ tts.Engine = (*Client)(nil)

// NewClient creates a client for the configured backend address. Call
// Connect before issuing requests.
func NewClient(cfg tts.KokoroConfig, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

// URL returns the backend websocket address.
func (c *Client) URL() string {
	return fmt.Sprintf("ws://%s:%d", c.cfg.Host, c.cfg.Port)
}

// Connect dials the backend, retrying with exponential backoff until the
// connection succeeds, the attempt budget is spent, or the connect
// timeout elapses. The backend needs time to load its model after
// startup, so a few failed attempts are normal.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return tts.ErrEngineClosed
	}
	if c.conn != nil {
		return nil
	}

	url := c.URL()
	attempt := 0
	dial := func() (*websocket.Conn, error) {
		attempt++
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil) //nolint:bodyclose // resp body is owned by the dialer on error
		if err != nil {
			c.logger.Debug("backend not ready", "url", url, "attempt", attempt, "err", err)
			return nil, err
		}
		return conn, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 5 * time.Second

	conn, err := backoff.Retry(ctx, dial,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.cfg.MaxReconnects+1)),
		backoff.WithMaxElapsedTime(c.cfg.ConnectTimeout),
	)
	if err != nil {
		return fmt.Errorf("connect to kokoro backend at %s: %w", url, err)
	}

	c.logger.Debug("connected to kokoro backend", "url", url)
	c.conn = conn
	return nil
}

// Ping verifies the backend answers on the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.roundTrip(ctx, pingRequest{Action: actionPing}, statusPong)
}

// StartSession opens a synthesis session on the backend.
func (c *Client) StartSession(ctx context.Context, params tts.SessionParams) error {
	return c.roundTrip(ctx, startSessionRequest{
		Action:      actionStartSession,
		SessionID:   params.ID,
		SavePath:    params.SavePath,
		Autoplay:    params.Autoplay,
		TotalChunks: params.TotalChunks,
	}, statusSessionStarted)
}

// Speak sends one chunk and blocks until the backend acknowledges it as
// generated. Progress statuses arriving in between are logged and
// skipped.
func (c *Client) Speak(ctx context.Context, req tts.SpeakRequest) error {
	return c.roundTrip(ctx, speakRequest{
		Action:      actionSpeak,
		SessionID:   req.SessionID,
		Text:        req.Text,
		Voice:       req.Voice,
		Speed:       req.Speed,
		TrimSilence: req.TrimSilence,
		TrimAmount:  req.TrimAmount,
		IsLastChunk: req.LastChunk,
	}, statusGenerated)
}

// Stop interrupts synthesis and clears all backend sessions.
func (c *Client) Stop(ctx context.Context) error {
	return c.roundTrip(ctx, stopRequest{Action: actionStop}, statusStopped)
}

// Close tears down the connection. The client cannot be reused after.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// roundTrip writes one request and reads status messages until the
// wanted terminal status, an error status, or a deadline.
func (c *Client) roundTrip(ctx context.Context, req any, want string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return tts.ErrEngineClosed
	}
	if c.conn == nil {
		return tts.ErrEngineNotConnected
	}

	deadline := time.Now().Add(c.cfg.SpeakTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return fmt.Errorf("set read deadline: %w", err)
		}

		var resp response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		switch resp.Status {
		case want:
			return nil
		case statusError:
			return fmt.Errorf("%w: %s", tts.ErrBackendError, resp.Message)
		case statusGenerating:
			c.logger.Debug("backend generating", "message", resp.Message)
		case statusSessionStats:
			c.logger.Info("session finished", "stats", resp.Message)
		default:
			c.logger.Debug("skipping backend status", "status", resp.Status, "message", resp.Message)
		}
	}
}
