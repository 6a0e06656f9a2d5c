// Package gateway exposes the chat widget surface over WebSocket and
// HTTP: live exchanges, transcript history, the embeddable widget script
// and a stats snapshot.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/campusbot/course-ai-platform/internal/chat"
	"github.com/campusbot/course-ai-platform/internal/observability/metrics"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

const (
	roleUser = "user"
	roleBot  = "bot"
)

// Transcript stores and reads per-session chat history.
type Transcript interface {
	Append(ctx context.Context, sessionID string, msg TranscriptMessage) error
	List(ctx context.Context, sessionID string, limit int64) ([]TranscriptMessage, error)
}

// Handler serves widget connections and funnels every exchange through
// the chat dispatcher, one per live session.
type Handler struct {
	client       chat.BotClient
	botCfg       chat.Config
	transcript   Transcript
	logger       *logging.Logger
	metrics      *metrics.ChatMetrics
	widgetJS     []byte
	historyLimit int64

	mu       sync.RWMutex
	sessions map[string]*wsConn // sessionID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "history", "ping"
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "history", "session", "error", "pong"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"` // "bot" or "user"
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// HandlerOption customizes handler behavior.
type HandlerOption func(*Handler)

// WithMetrics records exchange outcomes on the given metrics.
func WithMetrics(m *metrics.ChatMetrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithHistoryLimit caps how many lines history responses return.
func WithHistoryLimit(limit int64) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.historyLimit = limit
		}
	}
}

// NewHandler creates the widget handler.
func NewHandler(client chat.BotClient, botCfg chat.Config, transcript Transcript, widgetJS []byte, logger *logging.Logger, opts ...HandlerOption) *Handler {
	if client == nil {
		panic("gateway: bot client is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	h := &Handler{
		client:       client,
		botCfg:       botCfg,
		transcript:   transcript,
		logger:       logger,
		widgetJS:     widgetJS,
		historyLimit: 50,
		sessions:     make(map[string]*wsConn),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) dispatcherFor(sessionID string, p chat.Presenter) *chat.Dispatcher {
	return chat.NewDispatcher(h.botCfg, h.client, chat.SessionFromID(sessionID), p, h.logger, h.metrics)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = chat.NewSession().ID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	h.pushHistory(r.Context(), conn, sessionID)

	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[sessionID] = wsc
	h.mu.Unlock()

	d := h.dispatcherFor(sessionID, &wsPresenter{h: h, ctx: r.Context(), sessionID: sessionID})

	defer func() {
		d.Wait()
		h.mu.Lock()
		if h.sessions[sessionID] == wsc {
			delete(h.sessions, sessionID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("chat connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat connection closed", "session_id", sessionID, "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "history":
			h.pushHistory(r.Context(), conn, sessionID)
		case "message":
			d.Dispatch(r.Context(), msg.Text)
		}
	}
}

func (h *Handler) pushHistory(ctx context.Context, conn *websocket.Conn, sessionID string) {
	if h.transcript == nil {
		return
	}
	msgs, err := h.transcript.List(ctx, sessionID, h.historyLimit)
	if err != nil || len(msgs) == 0 {
		return
	}
	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "history",
		SessionID: sessionID,
		Messages:  toHistory(msgs),
	})
}

func toHistory(msgs []TranscriptMessage) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}

func (h *Handler) recordLine(ctx context.Context, sessionID, role, text string) {
	if h.transcript == nil {
		return
	}
	msg := TranscriptMessage{Role: role, Text: text, Timestamp: time.Now().UTC()}
	if err := h.transcript.Append(ctx, sessionID, msg); err != nil {
		h.logger.Warn("transcript append failed", "session_id", sessionID, "error", err)
	}
}

// sendToSession sends a message to an active WebSocket session.
func (h *Handler) sendToSession(sessionID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

func roleOf(sender chat.Sender) string {
	if sender == chat.SenderUser {
		return roleUser
	}
	return roleBot
}

// wsPresenter feeds dispatcher output into the transcript and pushes bot
// lines to the live socket. The widget renders the user's own line
// locally, so only bot lines go back over the wire.
type wsPresenter struct {
	h         *Handler
	ctx       context.Context
	sessionID string
}

func (p *wsPresenter) Append(sender chat.Sender, text string) {
	role := roleOf(sender)
	p.h.recordLine(p.ctx, p.sessionID, role, text)
	if role != roleBot {
		return
	}
	p.h.sendToSession(p.sessionID, OutboundMessage{
		Type:      "message",
		Role:      roleBot,
		Text:      text,
		SessionID: p.sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// httpPresenter collects bot segments for a synchronous reply while
// still recording both sides in the transcript.
type httpPresenter struct {
	h         *Handler
	ctx       context.Context
	sessionID string

	mu       sync.Mutex
	segments []HistoryMessage
}

func (p *httpPresenter) Append(sender chat.Sender, text string) {
	role := roleOf(sender)
	p.h.recordLine(p.ctx, p.sessionID, role, text)
	if role != roleBot {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.segments = append(p.segments, HistoryMessage{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *httpPresenter) bot() []HistoryMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]HistoryMessage, len(p.segments))
	copy(out, p.segments)
	return out
}

// HandleMessage is the HTTP fallback: it runs the exchange to completion
// and returns the bot's reply segments.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = chat.NewSession().ID()
	}

	p := &httpPresenter{h: h, ctx: r.Context(), sessionID: req.SessionID}
	d := h.dispatcherFor(req.SessionID, p)
	d.Dispatch(r.Context(), req.Text)
	d.Wait()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"session_id": req.SessionID,
		"messages":   p.bot(),
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	history := []HistoryMessage{}
	if h.transcript != nil {
		msgs, err := h.transcript.List(r.Context(), sessionID, h.historyLimit)
		if err != nil {
			h.logger.Error("loading history failed", "session_id", sessionID, "error", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
		history = toHistory(msgs)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": history})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
