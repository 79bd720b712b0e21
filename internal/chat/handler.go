package chat

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/fortis-steel/chatbot-api/pkg/logging"
	"golang.org/x/net/websocket"
)

const (
	// SessionHeader carries an explicit client session token.
	SessionHeader = "X-Session-ID"

	maxBodyBytes = 64 << 10
)

// SessionCounter reports how many lead sessions are open.
type SessionCounter interface {
	Len() int
}

// NotifierStatus describes the lead delivery backend.
type NotifierStatus interface {
	Configured() bool
	Backend() string
}

// Info is the static service metadata shown on "/".
type Info struct {
	Name    string
	Version string
	Env     string
}

// Handler exposes the chat service over HTTP and WebSocket.
type Handler struct {
	service  *Service
	sessions SessionCounter
	notifier NotifierStatus
	info     Info
	logger   *logging.Logger
}

// Request is the POST /chat body.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Response is the POST /chat reply.
type Response struct {
	Reply string `json:"reply"`
}

// InboundFrame is what the widget sends over the socket.
type InboundFrame struct {
	Type      string `json:"type"` // "message", "ping"
	Text      string `json:"text"`
	SessionID string `json:"session_id,omitempty"`
}

// OutboundFrame is what the socket sends back.
type OutboundFrame struct {
	Type string `json:"type"` // "reply", "pong", "error"
	Text string `json:"text,omitempty"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status             string `json:"status"`
	Service            string `json:"service"`
	ActiveSessions     int    `json:"active_sessions"`
	AIConfigured       bool   `json:"ai_configured"`
	NotifierConfigured bool   `json:"notifier_configured"`
	NotifierBackend    string `json:"notifier_backend"`
}

func NewHandler(service *Service, sessions SessionCounter, notifier NotifierStatus, info Info, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if info.Name == "" {
		info.Name = "Fortis Chatbot API"
	}
	return &Handler{
		service:  service,
		sessions: sessions,
		notifier: notifier,
		info:     info,
		logger:   logger,
	}
}

// HandleChat answers POST /chat. A body that is not valid JSON is treated as
// an empty message.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req Request
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			h.logger.Debug("chat: malformed request body", "error", err)
			req = Request{}
		}
	}

	key := SessionKey(r, req.SessionID)
	reply, err := h.service.HandleMessage(r.Context(), key, req.Message)
	if err != nil {
		h.logger.Error("chat: handle message failed", "error", err, "session_key", key)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, Response{Reply: reply.Text})
}

// HandleWebSocket serves the same dialogue over a socket, one reply per
// message frame.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	defer conn.Close()

	defaultKey := SessionKey(r, r.URL.Query().Get("session"))
	h.logger.Info("chat: websocket opened", "session_key", defaultKey)

	for {
		var frame InboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			h.logger.Debug("chat: websocket closed", "session_key", defaultKey, "error", err)
			return
		}

		switch frame.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: "pong"})
			continue
		case "message":
		default:
			continue
		}

		key := defaultKey
		if id := strings.TrimSpace(frame.SessionID); id != "" {
			key = id
		}
		reply, err := h.service.HandleMessage(r.Context(), key, frame.Text)
		if err != nil {
			h.logger.Error("chat: websocket message failed", "error", err, "session_key", key)
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: "error", Text: "internal error"})
			continue
		}
		if err := websocket.JSON.Send(conn, OutboundFrame{Type: "reply", Text: reply.Text}); err != nil {
			h.logger.Debug("chat: websocket send failed", "error", err, "session_key", key)
			return
		}
	}
}

// HandleHealth answers GET and HEAD /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:          "ok",
		Service:         "chatbot-api",
		AIConfigured:    h.service.AIConfigured(),
		NotifierBackend: "none",
	}
	if h.sessions != nil {
		resp.ActiveSessions = h.sessions.Len()
	}
	if h.notifier != nil {
		resp.NotifierConfigured = h.notifier.Configured()
		resp.NotifierBackend = h.notifier.Backend()
	}
	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRoot describes the service.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": h.info.Name,
		"version": h.info.Version,
		"env":     h.info.Env,
		"status":  "running",
		"endpoints": map[string]string{
			"chat":    "POST /chat",
			"chat_ws": "GET /chat/ws",
			"health":  "GET /health",
			"metrics": "GET /metrics",
		},
	})
}

// SessionKey picks the explicit token, then the X-Session-ID header, then the
// client address without port.
func SessionKey(r *http.Request, explicit string) string {
	if key := strings.TrimSpace(explicit); key != "" {
		return key
	}
	if key := strings.TrimSpace(r.Header.Get(SessionHeader)); key != "" {
		return key
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	if addr == "" {
		return "unknown"
	}
	return addr
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
