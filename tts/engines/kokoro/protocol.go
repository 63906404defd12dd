package kokoro

// Wire messages for the Kokoro backend's websocket JSON protocol. Every
// request carries an action; the backend answers with one or more status
// messages, the last of which is terminal for the request.

const (
	actionPing         = "ping"
	actionStartSession = "start_session"
	actionSpeak        = "speak"
	actionStop         = "stop"
)

const (
	statusPong           = "pong"
	statusSessionStarted = "session_started"
	statusGenerating     = "generating"
	statusGenerated      = "generated"
	statusSessionStats   = "session_stats"
	statusStopped        = "stopped"
	statusError          = "error"
)

type pingRequest struct {
	Action string `json:"action"`
}

type startSessionRequest struct {
	Action      string `json:"action"`
	SessionID   string `json:"session_id"`
	SavePath    string `json:"save_path,omitempty"`
	Autoplay    bool   `json:"autoplay"`
	TotalChunks int    `json:"total_chunks"`
}

type speakRequest struct {
	Action      string  `json:"action"`
	SessionID   string  `json:"session_id"`
	Text        string  `json:"text"`
	Voice       string  `json:"voice"`
	Speed       float64 `json:"speed"`
	TrimSilence bool    `json:"trim_silence,omitempty"`
	TrimAmount  float64 `json:"trim_amount,omitempty"`
	IsLastChunk bool    `json:"is_last_chunk"`
}

type stopRequest struct {
	Action string `json:"action"`
}

type response struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	IsLastChunk bool   `json:"is_last_chunk,omitempty"`
}
