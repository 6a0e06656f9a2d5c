// Package chat implements the conversational widget core: a process-scoped
// session, a dispatcher that forwards user text to the bot, and presenters
// that render the transcript.
package chat

import (
	"strconv"
	"time"
)

// Session identifies one conversation with the bot. The identifier is
// minted once and reused for every exchange until the process exits, so
// the service sees a single continuous conversation.
type Session struct {
	id string
}

// NewSession mints a session from the current clock.
func NewSession() Session {
	return NewSessionAt(time.Now())
}

// NewSessionAt mints a session from the given instant. The identifier is
// the millisecond timestamp in decimal; it is opaque to the service and
// tied to nothing but process start time.
func NewSessionAt(now time.Time) Session {
	return Session{id: strconv.FormatInt(now.UnixMilli(), 10)}
}

// SessionFromID restores a session a client presented from an earlier
// visit. The id is treated as opaque; an empty id mints a fresh session.
func SessionFromID(id string) Session {
	if id == "" {
		return NewSession()
	}
	return Session{id: id}
}

// ID returns the stable session identifier.
func (s Session) ID() string { return s.id }
