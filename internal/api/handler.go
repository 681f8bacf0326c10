// Package api provides HTTP handlers for the chatbot API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/requestlog"
)

// Responder answers one conversation turn. The chat contract guarantees
// an answer for every question, so there is no error path.
type Responder interface {
	Respond(ctx context.Context, senderID, question string) domain.Reply
}

// Handler serves the chatbot endpoints.
type Handler struct {
	engine Responder
	log    *requestlog.Store
}

// NewHandler creates a chatbot API handler.
func NewHandler(engine Responder, logStore *requestlog.Store) *Handler {
	return &Handler{engine: engine, log: logStore}
}

// RegisterRoutes registers the chatbot routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/ask", h.Ask)
	r.Get("/history/{senderID}", h.History)
	r.Get("/counts", h.Counts)
}

type askRequest struct {
	Question string `json:"question"`
	Sender   string `json:"sender"`
}

// Ask handles one inbound chat message.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSON(w, http.StatusBadRequest, map[string]string{"answer": "Por favor, haz una pregunta."})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		JSON(w, http.StatusBadRequest, map[string]string{"answer": "Por favor, haz una pregunta."})
		return
	}
	sender := req.Sender
	if sender == "" {
		sender = "unknown_sender"
	}

	reply := h.engine.Respond(r.Context(), sender, req.Question)
	JSON(w, http.StatusOK, map[string]string{"answer": reply.Answer})
}

// History returns the logged conversation turns for a sender, newest
// first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	senderID := chi.URLParam(r, "senderID")

	history, err := h.log.History(senderID)
	if err != nil {
		slog.Error("failed to read history", "sender_id", senderID, "error", err)
		Error(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	if history == nil {
		history = []requestlog.Entry{}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].Timestamp.After(history[j].Timestamp)
	})

	JSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

// Counts returns the number of logged requests per category.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.log.CountsByCategory()
	if err != nil {
		slog.Error("failed to count categories", "error", err)
		Error(w, http.StatusInternalServerError, "failed to count categories")
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"category_counts": counts})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
