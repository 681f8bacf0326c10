package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"
)

// wsQuestion is an inbound WebSocket chat message.
type wsQuestion struct {
	Question string `json:"question"`
}

// wsAnswer is an outbound WebSocket chat message.
type wsAnswer struct {
	Answer string `json:"answer"`
}

// WebSocketHandler serves a persistent chat connection for one sender.
// Each received question goes through the same engine as /ask.
type WebSocketHandler struct {
	engine Responder
}

// NewWebSocketHandler creates a WebSocket chat handler.
func NewWebSocketHandler(engine Responder) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	senderID := strings.TrimSpace(r.URL.Query().Get("sender"))
	if senderID == "" {
		Error(w, http.StatusBadRequest, "sender query parameter is required")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept WebSocket", "error", err, "sender_id", senderID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr, "sender_id", senderID)
		}
	}()

	slog.Info("WebSocket chat connected", "sender_id", senderID, "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		var question wsQuestion
		if err := readJSON(ctx, ws, &question); err != nil {
			slog.Debug("WebSocket chat closed", "sender_id", senderID, "error", err)
			return
		}
		if strings.TrimSpace(question.Question) == "" {
			if err := writeJSON(ctx, ws, wsAnswer{Answer: "Por favor, haz una pregunta."}); err != nil {
				return
			}
			continue
		}

		reply := h.engine.Respond(ctx, senderID, question.Question)
		if err := writeJSON(ctx, ws, wsAnswer{Answer: reply.Answer}); err != nil {
			slog.Debug("WebSocket write failed", "sender_id", senderID, "error", err)
			return
		}
	}
}

func readJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	_, data, err := ws.Read(ctx)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
