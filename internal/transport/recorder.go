package transport

import (
	"context"
	"sync"
)

// Recorder is an in-memory Sink for tests.
type Recorder struct {
	// Err, if set, is returned from every Send after the message is recorded.
	Err    error
	Format Format

	mu       sync.Mutex
	messages []Message
	closed   bool
}

// NewRecorder returns a Recorder rendering lines with f.
func NewRecorder(f Format) *Recorder {
	return &Recorder{Format: f}
}

// Send records msg.
func (r *Recorder) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.messages = append(r.messages, msg)
	return r.Err
}

// Close marks the recorder closed.
func (r *Recorder) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Lines returns every recorded message encoded with r.Format.
func (r *Recorder) Lines() []string {
	msgs := r.Messages()
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = r.Format.Encode(m)
	}
	return lines
}

// Len returns the number of recorded messages.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
