package chat

import (
	"context"
	"fmt"
)

// DefaultLocaleID is used when Config.LocaleID is left empty.
const DefaultLocaleID = "en_US"

// Config identifies the bot a dispatcher talks to.
type Config struct {
	BotID      string
	BotAliasID string
	LocaleID   string
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	if c.BotID == "" {
		return fmt.Errorf("chat: bot id is required")
	}
	if c.BotAliasID == "" {
		return fmt.Errorf("chat: bot alias id is required")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.LocaleID == "" {
		c.LocaleID = DefaultLocaleID
	}
	return c
}

// ExchangeRequest carries one user utterance to the bot.
type ExchangeRequest struct {
	BotID      string
	BotAliasID string
	LocaleID   string
	SessionID  string
	Text       string
}

// ExchangeResult is the bot's reply: zero or more text segments in the
// order the service returned them.
type ExchangeResult struct {
	Messages  []string
	SessionID string
}

// BotClient performs one exchange with the conversational service.
// Implementations make exactly one outbound call per Converse invocation.
type BotClient interface {
	Converse(ctx context.Context, req ExchangeRequest) (*ExchangeResult, error)
}
