package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/clinicdesk/medibot/internal/conversation"
	"github.com/clinicdesk/medibot/pkg/logging"
)

// Assistant runs chat turns and owns session state.
type Assistant interface {
	HandleTurn(ctx context.Context, sessionID, text string) (string, error)
	ClearSession(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) ([]conversation.ChatMessage, error)
}

// Handler serves the patient-facing chat endpoints: a plain POST turn
// endpoint for the widget, transcript retrieval, session reset, and a
// WebSocket for clients that keep the connection open.
type Handler struct {
	assistant Assistant
	logger    *logging.Logger
}

// ChatRequest is one patient turn.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant reply. SessionID echoes the request's
// ID, or the freshly minted one when the request had none.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// InboundMessage is what a WebSocket client sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to a WebSocket client.
type OutboundMessage struct {
	Type      string `json:"type"` // "message", "session", "error"
	Text      string `json:"text,omitempty"`
	Role      string `json:"role,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewHandler creates the chat handler.
func NewHandler(assistant Assistant, logger *logging.Logger) *Handler {
	if assistant == nil {
		panic("webchat: assistant cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{assistant: assistant, logger: logger}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleChat processes one POST /chat turn.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	reply, err := h.assistant.HandleTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		h.logger.Error("chat turn failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}
	writeJSON(w, http.StatusOK, ChatResponse{SessionID: sessionID, Reply: reply})
}

// HandleHistory returns the session transcript.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session parameter is required")
		return
	}
	history, err := h.assistant.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("history lookup failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if history == nil {
		history = []conversation.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   history,
	})
}

// HandleClear drops the session state and transcript.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := h.assistant.ClearSession(r.Context(), sessionID); err != nil {
		h.logger.Error("session clear failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}

// HandleWebSocket upgrades to WebSocket and runs turns over the connection.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	defer conn.Close()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = generateSessionID()
	}
	if err := websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID}); err != nil {
		return
	}

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			return
		}
		switch msg.Type {
		case "ping":
			continue
		case "message":
		default:
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "unknown message type"})
			continue
		}
		if strings.TrimSpace(msg.Text) == "" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "empty message"})
			continue
		}

		reply, err := h.assistant.HandleTurn(r.Context(), sessionID, msg.Text)
		if err != nil {
			h.logger.Error("websocket turn failed", "session_id", sessionID, "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "failed to process message"})
			continue
		}
		if err := websocket.JSON.Send(conn, OutboundMessage{
			Type:      "message",
			Role:      conversation.ChatRoleAssistant,
			Text:      reply,
			SessionID: sessionID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
