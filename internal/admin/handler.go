// Package admin provides the HTTP surface of the call-management
// service: the scheduling endpoint called by the chatbot plus call
// listing, lifecycle updates, and aggregate stats.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leosep/bank-chatbot/internal/api"
	"github.com/leosep/bank-chatbot/internal/calls"
	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/requestlog"
)

// Handler serves the call-management API.
type Handler struct {
	calls *calls.Store
	log   *requestlog.Store
}

// NewHandler creates a call-management handler.
func NewHandler(callStore *calls.Store, logStore *requestlog.Store) *Handler {
	return &Handler{calls: callStore, log: logStore}
}

// RegisterRoutes registers call-management routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/schedule_call", h.ScheduleCall)
		r.Get("/calls", h.ListCalls)
		r.Post("/calls/{callID}/status", h.UpdateCallStatus)
		r.Get("/stats", h.Stats)
	})
}

type scheduleCallRequest struct {
	Sender        string `json:"sender"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	PreferredTime string `json:"preferred_time"`
}

// ScheduleCall accepts a callback request from the chatbot and persists
// it as Pending.
func (h *Handler) ScheduleCall(w http.ResponseWriter, r *http.Request) {
	var req scheduleCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Sender == "" {
		req.Sender = "unknown"
	}
	if req.FullName == "" || req.Phone == "" || req.PreferredTime == "" {
		api.Error(w, http.StatusBadRequest, "missing required fields")
		return
	}

	call, err := h.calls.Create(r.Context(), req.Sender, req.FullName, req.Phone, req.PreferredTime)
	if err != nil {
		slog.Error("failed to create call", "sender", req.Sender, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to schedule call")
		return
	}

	slog.Info("call scheduled", "call_id", call.ID, "sender", call.SenderID)
	api.JSON(w, http.StatusCreated, map[string]string{
		"message": "Call scheduled successfully",
		"id":      call.ID,
	})
}

// ListCalls returns a page of calls filtered by status and search term.
func (h *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	result, total, err := h.calls.List(r.Context(), calls.Filter{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
		Page:   page,
	})
	if err != nil {
		slog.Error("failed to list calls", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to list calls")
		return
	}

	if result == nil {
		result = []*domain.Call{}
	}
	totalPages := (total + calls.DefaultPerPage - 1) / calls.DefaultPerPage

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"calls":       result,
		"total_items": total,
		"total_pages": totalPages,
	})
}

type updateStatusRequest struct {
	Status     string `json:"status"`
	Resolution string `json:"resolution,omitempty"`
}

// UpdateCallStatus transitions a call through its lifecycle.
func (h *Handler) UpdateCallStatus(w http.ResponseWriter, r *http.Request) {
	callID := chi.URLParam(r, "callID")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.CallStatus(normalizeStatus(req.Status))
	if !status.Valid() {
		api.Error(w, http.StatusBadRequest, "unknown status")
		return
	}

	call, err := h.calls.UpdateStatus(r.Context(), callID, status, req.Resolution)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			api.Error(w, http.StatusNotFound, "call not found")
			return
		}
		if strings.Contains(err.Error(), "invalid transition") {
			api.Error(w, http.StatusConflict, err.Error())
			return
		}
		slog.Error("failed to update call", "call_id", callID, "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to update call")
		return
	}

	api.JSON(w, http.StatusOK, call)
}

// Stats aggregates call and request-log activity over a date range.
// Supported filters: daily (default), weekly, monthly, custom
// (start_date/end_date as YYYY-MM-DD).
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start, end, err := statsRange(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	callStats, err := h.calls.StatsBetween(r.Context(), start, end)
	if err != nil {
		slog.Error("failed to aggregate call stats", "error", err)
		api.Error(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}

	entries, err := h.log.EntriesBetween(start, end)
	if err != nil {
		slog.Error("failed to read request log for stats", "error", err)
		entries = nil
	}
	categoryCounts := make(map[string]int)
	for _, entry := range entries {
		category := entry.Category
		if category == "" {
			category = "Uncategorized"
		}
		categoryCounts[category]++
	}

	statusLabels := []domain.CallStatus{domain.CallPending, domain.CallInProgress, domain.CallResolved}
	statusData := make([]int, len(statusLabels))
	for i, label := range statusLabels {
		statusData[i] = callStats.StatusCounts[label]
	}

	api.JSON(w, http.StatusOK, map[string]interface{}{
		"call_status_labels":          statusLabels,
		"call_status_data":            statusData,
		"log_category_counts":         categoryCounts,
		"total_calls":                 callStats.Total,
		"total_logs":                  len(entries),
		"avg_resolution_time_seconds": callStats.AvgResolutionSeconds,
	})
}

// normalizeStatus maps case-insensitive client input onto the canonical
// status spellings.
func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return string(domain.CallPending)
	case "in progress":
		return string(domain.CallInProgress)
	case "resolved":
		return string(domain.CallResolved)
	default:
		return strings.TrimSpace(raw)
	}
}

func statsRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r.URL.Query().Get("filter") {
	case "", "daily":
		return today, today.AddDate(0, 0, 1), nil
	case "weekly":
		end := now.AddDate(0, 0, 1)
		return end.AddDate(0, 0, -7), end, nil
	case "monthly":
		end := now.AddDate(0, 0, 1)
		return end.AddDate(0, 0, -30), end, nil
	case "custom":
		start, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("start_date"), now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidRange
		}
		end, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("end_date"), now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, errInvalidRange
		}
		return start, end.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, errInvalidRange
	}
}
