package kokoro

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/notevox/notevox/tts"
)

var upgrader = websocket.Upgrader{}

// fakeBackend serves the Kokoro websocket protocol for tests.
type fakeBackend struct {
	t         *testing.T
	failSpeak bool
	requests  []map[string]any
}

func (f *fakeBackend) handler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req map[string]any
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		f.requests = append(f.requests, req)

		switch req["action"] {
		case "ping":
			_ = conn.WriteJSON(response{Status: "pong", Message: "Backend is alive"})
		case "start_session":
			_ = conn.WriteJSON(response{Status: "session_started", Message: "Started new TTS session"})
		case "speak":
			if f.failSpeak {
				_ = conn.WriteJSON(response{Status: "error", Message: "voice file missing"})
				continue
			}
			_ = conn.WriteJSON(response{Status: "generating", Message: "Generating speech..."})
			if last, _ := req["is_last_chunk"].(bool); last {
				_ = conn.WriteJSON(response{Status: "session_stats", Message: "Generated 42 characters in 1 chunks"})
			}
			_ = conn.WriteJSON(response{Status: "generated", Message: "Speech generated"})
		case "stop":
			_ = conn.WriteJSON(response{Status: "stopped", Message: "Speech stopped"})
		}
	}
}

func startFake(t *testing.T) (*fakeBackend, tts.KokoroConfig) {
	t.Helper()

	fake := &fakeBackend{t: t}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	cfg := tts.DefaultKokoroConfig()
	cfg.Host = u.Hostname()
	cfg.Port = port
	cfg.ConnectTimeout = 5 * time.Second
	cfg.SpeakTimeout = 5 * time.Second
	return fake, cfg
}

func connectedClient(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()

	fake, cfg := startFake(t)
	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return fake, client
}

func TestClientPing(t *testing.T) {
	_, client := connectedClient(t)

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestClientSessionFlow(t *testing.T) {
	fake, client := connectedClient(t)
	ctx := context.Background()

	err := client.StartSession(ctx, tts.SessionParams{
		ID:          "notevox-test",
		Autoplay:    true,
		TotalChunks: 2,
	})
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	reqs := []tts.SpeakRequest{
		{SessionID: "notevox-test", Text: "Hello there.", Voice: "af_bella", Speed: 1.0},
		{SessionID: "notevox-test", Text: "Goodbye.", Voice: "am_adam", Speed: 1.0, LastChunk: true},
	}
	for _, req := range reqs {
		if err := client.Speak(ctx, req); err != nil {
			t.Fatalf("Speak(%q): %v", req.Text, err)
		}
	}

	if err := client.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(fake.requests) != 4 {
		t.Fatalf("backend saw %d requests, want 4", len(fake.requests))
	}
	speak := fake.requests[1]
	if speak["action"] != "speak" || speak["voice"] != "af_bella" || speak["text"] != "Hello there." {
		t.Errorf("first speak request malformed: %v", speak)
	}
	if last, _ := fake.requests[2]["is_last_chunk"].(bool); !last {
		t.Errorf("final speak request not marked last: %v", fake.requests[2])
	}
}

func TestClientBackendErrorSurfaces(t *testing.T) {
	fake, client := connectedClient(t)
	fake.failSpeak = true

	err := client.Speak(context.Background(), tts.SpeakRequest{
		SessionID: "s", Text: "x", Voice: "af_bella", Speed: 1.0,
	})
	if err == nil {
		t.Fatal("expected backend error")
	}
	if !tts.IsBackendError(err) {
		t.Errorf("error %v is not marked as a backend error", err)
	}
}

func TestClientRequiresConnect(t *testing.T) {
	_, cfg := startFake(t)
	client := NewClient(cfg, nil)

	if err := client.Ping(context.Background()); err != tts.ErrEngineNotConnected {
		t.Fatalf("Ping before Connect = %v, want ErrEngineNotConnected", err)
	}
}

func TestClientConnectWaitsForSlowBackend(t *testing.T) {
	fake := &fakeBackend{t: t}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	u, err := url.Parse("http://" + srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())

	cfg := tts.DefaultKokoroConfig()
	cfg.Host = u.Hostname()
	cfg.Port = port
	cfg.ConnectTimeout = 10 * time.Second
	cfg.SpeakTimeout = 5 * time.Second
	cfg.MaxReconnects = 10

	// Bring the backend up only after the client has started dialing.
	go func() {
		time.Sleep(700 * time.Millisecond)
		srv.Start()
	}()

	client := NewClient(cfg, nil)
	defer client.Close()
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect did not survive backend startup delay: %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping after delayed connect: %v", err)
	}
}

func TestClientClosedErrors(t *testing.T) {
	_, client := connectedClient(t)
	if err := client.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := client.Ping(context.Background()); err != tts.ErrEngineClosed {
		t.Fatalf("Ping after Close = %v, want ErrEngineClosed", err)
	}
}
