package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbot/course-ai-platform/internal/chat"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// stubBot replies with fixed segments, or fails.
type stubBot struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []chat.ExchangeRequest
}

func (s *stubBot) Converse(_ context.Context, req chat.ExchangeRequest) (*chat.ExchangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &chat.ExchangeResult{Messages: s.replies, SessionID: req.SessionID}, nil
}

// mockTranscript stores messages in memory.
type mockTranscript struct {
	mu    sync.Mutex
	store map[string][]TranscriptMessage
	err   error
}

func newMockTranscript() *mockTranscript {
	return &mockTranscript{store: make(map[string][]TranscriptMessage)}
}

func (m *mockTranscript) Append(_ context.Context, sessionID string, msg TranscriptMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.store[sessionID] = append(m.store[sessionID], msg)
	return nil
}

func (m *mockTranscript) List(_ context.Context, sessionID string, limit int64) ([]TranscriptMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	msgs := m.store[sessionID]
	if limit > 0 && int64(len(msgs)) > limit {
		msgs = msgs[len(msgs)-int(limit):]
	}
	return msgs, nil
}

func (m *mockTranscript) lines(sessionID string) []TranscriptMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store[sessionID]
}

func newTestHandler(bot chat.BotClient, ts Transcript, opts ...HandlerOption) *Handler {
	cfg := chat.Config{BotID: "B1", BotAliasID: "A1"}
	return NewHandler(bot, cfg, ts, []byte("// widget"), logging.New("error"), opts...)
}

func postMessage(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleMessage(w, req)
	return w
}

type messageResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

func TestHandleMessageReturnsBotReply(t *testing.T) {
	bot := &stubBot{replies: []string{"Hi there!", "Anything else?"}}
	ts := newMockTranscript()
	h := newTestHandler(bot, ts)

	w := postMessage(t, h, `{"session_id":"sess-1","text":"Hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.SessionID)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "bot", resp.Messages[0].Role)
	assert.Equal(t, "Hi there!", resp.Messages[0].Text)
	assert.Equal(t, "Anything else?", resp.Messages[1].Text)

	// Both sides of the exchange land in the transcript, user first.
	lines := ts.lines("sess-1")
	require.Len(t, lines, 3)
	assert.Equal(t, "user", lines[0].Role)
	assert.Equal(t, "Hello", lines[0].Text)
	assert.Equal(t, "bot", lines[1].Role)

	require.Len(t, bot.requests, 1)
	assert.Equal(t, "sess-1", bot.requests[0].SessionID)
	assert.Equal(t, "Hello", bot.requests[0].Text)
}

func TestHandleMessageRendersErrorLine(t *testing.T) {
	bot := &stubBot{err: errors.New("network timeout")}
	h := newTestHandler(bot, nil)

	w := postMessage(t, h, `{"session_id":"sess-1","text":"Hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Error: network timeout", resp.Messages[0].Text)
}

func TestHandleMessageRejectsBlankText(t *testing.T) {
	h := newTestHandler(&stubBot{}, nil)

	w := postMessage(t, h, `{"session_id":"sess-1","text":"   \n\t "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "text is required")
}

func TestHandleMessageRejectsBadJSON(t *testing.T) {
	h := newTestHandler(&stubBot{}, nil)

	w := postMessage(t, h, `{"text": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMessageMintsSession(t *testing.T) {
	bot := &stubBot{replies: []string{"Hi"}}
	h := newTestHandler(bot, nil)

	w := postMessage(t, h, `{"text":"Hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestHandleHistoryReturnsStoredLines(t *testing.T) {
	ts := newMockTranscript()
	ts.store["sess-1"] = []TranscriptMessage{
		{Role: "user", Text: "Hello", Timestamp: time.Unix(1700000000, 0).UTC()},
		{Role: "bot", Text: "Hi there!", Timestamp: time.Unix(1700000001, 0).UTC()},
	}
	h := newTestHandler(&stubBot{}, ts)

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess-1", nil)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "Hello", resp.Messages[0].Text)
	assert.Equal(t, "bot", resp.Messages[1].Role)
	assert.Equal(t, "2023-11-14T22:13:21Z", resp.Messages[1].Timestamp)
}

func TestHandleHistoryRequiresSession(t *testing.T) {
	h := newTestHandler(&stubBot{}, newMockTranscript())

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistoryWithoutStore(t *testing.T) {
	h := newTestHandler(&stubBot{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess-1", nil)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Messages)
	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

func TestHandleHistoryStoreError(t *testing.T) {
	ts := newMockTranscript()
	ts.err = errors.New("redis down")
	h := newTestHandler(&stubBot{}, ts)

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess-1", nil)
	w := httptest.NewRecorder()
	h.HandleHistory(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleWidgetJS(t *testing.T) {
	widgetContent := []byte("(function(){ /* widget */ })();")
	h := NewHandler(&stubBot{}, chat.Config{BotID: "B1", BotAliasID: "A1"}, nil, widgetContent, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/widget.js", nil)
	w := httptest.NewRecorder()
	h.HandleWidgetJS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, string(widgetContent), w.Body.String())
}

func TestEmbeddedWidgetScript(t *testing.T) {
	require.NotEmpty(t, WidgetJS)
	assert.Contains(t, string(WidgetJS), "CampusChatConfig")
}

func TestNewHandlerRequiresClient(t *testing.T) {
	assert.PanicsWithValue(t, "gateway: bot client is required", func() {
		NewHandler(nil, chat.Config{}, nil, nil, nil)
	})
}

func TestHistoryLimitOption(t *testing.T) {
	h := newTestHandler(&stubBot{}, nil, WithHistoryLimit(5))
	assert.Equal(t, int64(5), h.historyLimit)

	h = newTestHandler(&stubBot{}, nil, WithHistoryLimit(0))
	assert.Equal(t, int64(50), h.historyLimit)
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, "user", roleOf(chat.SenderUser))
	assert.Equal(t, "bot", roleOf(chat.SenderBot))
}

func TestTranscriptFailureDoesNotBlockReply(t *testing.T) {
	bot := &stubBot{replies: []string{"Hi there!"}}
	ts := newMockTranscript()
	ts.err = errors.New("redis down")
	h := newTestHandler(bot, ts)

	w := postMessage(t, h, `{"session_id":"sess-1","text":"Hello"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp messageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "Hi there!", resp.Messages[0].Text)
}
