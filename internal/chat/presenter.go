package chat

import (
	"fmt"
	"io"
	"sync"
)

// Sender labels which side of the conversation produced a line.
type Sender string

const (
	SenderUser Sender = "You"
	SenderBot  Sender = "Bot"
)

// Presenter receives conversation lines in display order. Appends can
// arrive from multiple goroutines; implementations must serialize them.
// The transcript is append-only: lines are never edited or removed.
type Presenter interface {
	Append(sender Sender, text string)
}

// TranscriptPresenter accumulates rendered lines in memory.
type TranscriptPresenter struct {
	mu    sync.Mutex
	lines []string
}

func NewTranscriptPresenter() *TranscriptPresenter {
	return &TranscriptPresenter{}
}

func (p *TranscriptPresenter) Append(sender Sender, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, fmt.Sprintf("%s: %s", sender, text))
}

// Lines returns a copy of the transcript so far.
func (p *TranscriptPresenter) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.lines))
	copy(out, p.lines)
	return out
}

// WriterPresenter streams lines to w as they arrive. Used by the
// terminal client with stdout.
type WriterPresenter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterPresenter(w io.Writer) *WriterPresenter {
	if w == nil {
		panic("chat: writer is required")
	}
	return &WriterPresenter{w: w}
}

func (p *WriterPresenter) Append(sender Sender, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s: %s\n", sender, text)
}

var (
	_ Presenter = (*TranscriptPresenter)(nil)
	_ Presenter = (*WriterPresenter)(nil)
)
