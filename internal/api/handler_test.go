package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leosep/bank-chatbot/internal/domain"
	"github.com/leosep/bank-chatbot/internal/requestlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	lastSender   string
	lastQuestion string
	reply        domain.Reply
}

func (s *stubResponder) Respond(_ context.Context, senderID, question string) domain.Reply {
	s.lastSender = senderID
	s.lastQuestion = question
	return s.reply
}

func newTestRouter(t *testing.T) (*chi.Mux, *stubResponder, *requestlog.Store) {
	t.Helper()

	logStore, err := requestlog.NewStore(filepath.Join(t.TempDir(), "request_log.json"))
	require.NoError(t, err)

	responder := &stubResponder{reply: domain.Reply{Answer: "👋 Hola", Category: "Welcome"}}
	handler := NewHandler(responder, logStore)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, responder, logStore
}

func TestAskReturnsAnswer(t *testing.T) {
	r, responder, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/ask",
		strings.NewReader(`{"question": "hola", "sender": "sender-1"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "👋 Hola", resp["answer"])
	assert.Equal(t, "sender-1", responder.lastSender)
	assert.Equal(t, "hola", responder.lastQuestion)
}

func TestAskDefaultsSender(t *testing.T) {
	r, responder, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question": "hola"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unknown_sender", responder.lastSender)
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	r, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty question", `{"question": "   ", "sender": "s1"}`},
		{"missing question", `{"sender": "s1"}`},
		{"malformed body", `{not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Por favor, haz una pregunta.", resp["answer"])
		})
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	r, _, logStore := newTestRouter(t)

	base := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	require.NoError(t, logStore.Append(requestlog.Entry{Timestamp: base, SenderID: "s1", Question: "primera", Category: "A"}))
	require.NoError(t, logStore.Append(requestlog.Entry{Timestamp: base.Add(time.Minute), SenderID: "s1", Question: "segunda", Category: "B"}))
	require.NoError(t, logStore.Append(requestlog.Entry{Timestamp: base.Add(2 * time.Minute), SenderID: "otro", Question: "ajena", Category: "C"}))

	req := httptest.NewRequest(http.MethodGet, "/history/s1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		History []requestlog.Entry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.History, 2)
	assert.Equal(t, "segunda", resp.History[0].Question)
	assert.Equal(t, "primera", resp.History[1].Question)
}

func TestHistoryUnknownSenderIsEmptyArray(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/history/nobody", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"history": []}`, w.Body.String())
}

func TestCounts(t *testing.T) {
	r, _, logStore := newTestRouter(t)

	require.NoError(t, logStore.Append(requestlog.Entry{SenderID: "s1", Question: "q", Category: "A"}))
	require.NoError(t, logStore.Append(requestlog.Entry{SenderID: "s2", Question: "q", Category: "A"}))
	require.NoError(t, logStore.Append(requestlog.Entry{SenderID: "s3", Question: "q", Category: "B"}))

	req := httptest.NewRequest(http.MethodGet, "/counts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category_counts": {"A": 2, "B": 1}}`, w.Body.String())
}
