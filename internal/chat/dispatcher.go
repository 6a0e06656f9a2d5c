package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aws/smithy-go"

	"github.com/campusbot/course-ai-platform/internal/observability/metrics"
	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// Dispatcher forwards user input to the bot and renders both sides of the
// exchange through a Presenter. Each dispatch makes at most one service
// call, launched on its own goroutine so the caller never blocks on the
// network.
type Dispatcher struct {
	client    BotClient
	session   Session
	presenter Presenter
	cfg       Config
	logger    *logging.Logger
	metrics   *metrics.ChatMetrics

	wg sync.WaitGroup
}

// NewDispatcher wires a dispatcher. Client and presenter are required;
// the logger falls back to the default and metrics may be nil.
func NewDispatcher(cfg Config, client BotClient, session Session, presenter Presenter, logger *logging.Logger, m *metrics.ChatMetrics) *Dispatcher {
	if client == nil {
		panic("chat: bot client is required")
	}
	if presenter == nil {
		panic("chat: presenter is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		client:    client,
		session:   session,
		presenter: presenter,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		metrics:   m,
	}
}

// Dispatch trims raw input and, unless it is blank, renders the user line
// and starts one exchange. Blank input is dropped with no side effects:
// nothing rendered, nothing sent, nothing logged.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return
	}

	d.presenter.Append(SenderUser, text)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.exchange(ctx, text)
	}()
}

// Wait blocks until every in-flight exchange has rendered its outcome.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// SessionID exposes the conversation identifier the dispatcher was bound to.
func (d *Dispatcher) SessionID() string {
	return d.session.ID()
}

func (d *Dispatcher) exchange(ctx context.Context, text string) {
	start := time.Now()
	result, err := d.client.Converse(ctx, ExchangeRequest{
		BotID:      d.cfg.BotID,
		BotAliasID: d.cfg.BotAliasID,
		LocaleID:   d.cfg.LocaleID,
		SessionID:  d.session.ID(),
		Text:       text,
	})
	if err != nil {
		d.metrics.ObserveExchange("error", time.Since(start).Seconds())
		d.logger.Error("bot exchange failed",
			"session_id", d.session.ID(),
			"error", err,
		)
		d.presenter.Append(SenderBot, "Error: "+humanMessage(err))
		return
	}

	d.metrics.ObserveExchange("success", time.Since(start).Seconds())
	d.metrics.AddReplySegments(len(result.Messages))
	for _, msg := range result.Messages {
		d.presenter.Append(SenderBot, msg)
	}
}

// humanMessage extracts the service's own message when the error chain
// carries one. The full wrapped error still goes to the log; this is only
// the text shown in the transcript.
func humanMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return apiErr.ErrorMessage()
	}
	return err.Error()
}
