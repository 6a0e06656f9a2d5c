// Package fulfillment implements the bot's fulfillment code hook: it
// receives an interpreted utterance, answers it from the course catalog,
// professor reviews and the user's stored context, and builds the close
// response the bot runtime expects.
package fulfillment

import "strings"

// Event is the fulfillment hook payload for a single turn.
type Event struct {
	MessageVersion    string            `json:"messageVersion,omitempty"`
	InvocationSource  string            `json:"invocationSource,omitempty"`
	SessionID         string            `json:"sessionId,omitempty"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
	Bot               Bot               `json:"bot,omitempty"`
	RequestAttributes map[string]string `json:"requestAttributes,omitempty"`
	SessionState      SessionState      `json:"sessionState"`

	// UserID is the V1-era field some channels still populate.
	UserID string `json:"userId,omitempty"`
}

// Bot identifies the bot definition that produced the event.
type Bot struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	AliasID  string `json:"aliasId,omitempty"`
	LocaleID string `json:"localeId,omitempty"`
	Version  string `json:"version,omitempty"`
}

// SessionState carries the conversation state across turns.
type SessionState struct {
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
	Intent            Intent            `json:"intent"`
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
}

// DialogAction tells the runtime what to do after this turn.
type DialogAction struct {
	Type string `json:"type"`
}

// Intent is the recognized intent with its elicited slots.
type Intent struct {
	Name              string           `json:"name"`
	Slots             map[string]*Slot `json:"slots,omitempty"`
	State             string           `json:"state,omitempty"`
	ConfirmationState string           `json:"confirmationState,omitempty"`
}

// Slot is one elicited slot; absent slots arrive as null.
type Slot struct {
	Shape string     `json:"shape,omitempty"`
	Value *SlotValue `json:"value,omitempty"`
}

// SlotValue holds the raw utterance fragment and the runtime's resolution
// of it.
type SlotValue struct {
	OriginalValue    string   `json:"originalValue,omitempty"`
	InterpretedValue string   `json:"interpretedValue,omitempty"`
	ResolvedValues   []string `json:"resolvedValues,omitempty"`
}

// Response closes the turn with one plain-text message.
type Response struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages"`
}

// Message is a single reply segment.
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// slotValue returns the named slot's interpreted value, falling back to
// the raw utterance value when the runtime did not resolve one. Empty
// when the slot was not elicited.
func (e *Event) slotValue(name string) string {
	slot := e.SessionState.Intent.Slots[name]
	if slot == nil || slot.Value == nil {
		return ""
	}
	if v := strings.TrimSpace(slot.Value.InterpretedValue); v != "" {
		return v
	}
	return strings.TrimSpace(slot.Value.OriginalValue)
}
