package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbot/course-ai-platform/pkg/logging"
)

// stubClient records requests and replays a canned result or error.
type stubClient struct {
	mu     sync.Mutex
	calls  []ExchangeRequest
	result *ExchangeResult
	err    error
	delay  time.Duration
}

func (s *stubClient) Converse(_ context.Context, req ExchangeRequest) (*ExchangeResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubClient) lastCall() ExchangeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func newTestDispatcher(client BotClient, p Presenter) *Dispatcher {
	cfg := Config{BotID: "BOT123", BotAliasID: "ALIAS456"}
	session := NewSessionAt(time.UnixMilli(1700000000000))
	return NewDispatcher(cfg, client, session, p, logging.New("error"), nil)
}

func TestDispatchRendersUserThenBotReply(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{Messages: []string{"Hi there!"}}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "Hello")
	d.Wait()

	assert.Equal(t, []string{"You: Hello", "Bot: Hi there!"}, p.Lines())
	require.Equal(t, 1, client.callCount())

	req := client.lastCall()
	assert.Equal(t, "BOT123", req.BotID)
	assert.Equal(t, "ALIAS456", req.BotAliasID)
	assert.Equal(t, DefaultLocaleID, req.LocaleID)
	assert.Equal(t, "1700000000000", req.SessionID)
	assert.Equal(t, "Hello", req.Text)
}

func TestDispatchBlankInputIsSilent(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{Messages: []string{"unused"}}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "   \t\n")
	d.Wait()

	assert.Empty(t, p.Lines())
	assert.Zero(t, client.callCount())
}

func TestDispatchTrimsInput(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "  Hello  ")
	d.Wait()

	assert.Equal(t, []string{"You: Hello"}, p.Lines())
	assert.Equal(t, "Hello", client.lastCall().Text)
}

func TestDispatchErrorRendersSingleErrorLine(t *testing.T) {
	client := &stubClient{err: errors.New("Network timeout")}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "Hello")
	d.Wait()

	assert.Equal(t, []string{"You: Hello", "Bot: Error: Network timeout"}, p.Lines())
	assert.Equal(t, 1, client.callCount())
}

func TestDispatchPreservesSegmentOrder(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{Messages: []string{"first", "second", "third"}}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "tell me everything")
	d.Wait()

	assert.Equal(t, []string{
		"You: tell me everything",
		"Bot: first",
		"Bot: second",
		"Bot: third",
	}, p.Lines())
}

func TestDispatchEmptyReplyRendersUserLineOnly(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	d.Dispatch(context.Background(), "Hello")
	d.Wait()

	assert.Equal(t, []string{"You: Hello"}, p.Lines())
}

func TestDispatchDoesNotBlockOnSlowClient(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{Messages: []string{"done"}}, delay: 200 * time.Millisecond}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	start := time.Now()
	d.Dispatch(context.Background(), "Hello")
	dispatched := time.Since(start)

	// The user line is rendered synchronously, the network call is not.
	assert.Less(t, dispatched, 100*time.Millisecond)
	assert.Equal(t, []string{"You: Hello"}, p.Lines())

	d.Wait()
	assert.Equal(t, []string{"You: Hello", "Bot: done"}, p.Lines())
}

func TestDispatchOneCallPerInvocation(t *testing.T) {
	client := &stubClient{result: &ExchangeResult{Messages: []string{"ok"}}}
	p := NewTranscriptPresenter()
	d := newTestDispatcher(client, p)

	for i := 0; i < 5; i++ {
		d.Dispatch(context.Background(), fmt.Sprintf("message %d", i))
		d.Wait()
	}

	assert.Equal(t, 5, client.callCount())
	assert.Len(t, p.Lines(), 10)
}

func TestNewDispatcherRequiresCollaborators(t *testing.T) {
	cfg := Config{BotID: "b", BotAliasID: "a"}
	session := NewSession()
	assert.Panics(t, func() {
		NewDispatcher(cfg, nil, session, NewTranscriptPresenter(), nil, nil)
	})
	assert.Panics(t, func() {
		NewDispatcher(cfg, &stubClient{}, session, nil, nil, nil)
	})
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{BotID: "b"}.Validate())
	assert.NoError(t, Config{BotID: "b", BotAliasID: "a"}.Validate())
}

func TestHumanMessagePrefersServiceMessage(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "BadRequestException", Message: "Invalid bot configuration"}
	wrapped := fmt.Errorf("chat: recognize text: %w", apiErr)
	assert.Equal(t, "Invalid bot configuration", humanMessage(wrapped))

	plain := errors.New("Network timeout")
	assert.Equal(t, "Network timeout", humanMessage(plain))
}
