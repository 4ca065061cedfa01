package store

import (
	"fmt"
	"sync"
)

// DefaultBatchSize is how many samples a Recorder buffers between writes.
const DefaultBatchSize = 100

// Recorder buffers a session's samples and writes them in batches.
type Recorder struct {
	sessions *SessionRepository
	samples  *SampleRepository
	id       string
	batch    int

	mu         sync.Mutex
	buf        []Sample
	seq        int64
	frames     int
	detections int
	closed     bool
}

// NewRecorder creates the session row and returns a recorder for it.
func (s *Store) NewRecorder(sess Session, batchSize int) (*Recorder, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	sessions := s.Sessions()
	if err := sessions.Create(&sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Recorder{
		sessions: sessions,
		samples:  s.Samples(),
		id:       sess.ID,
		batch:    batchSize,
		buf:      make([]Sample, 0, batchSize),
	}, nil
}

// SessionID returns the ID of the session being recorded.
func (r *Recorder) SessionID() string {
	return r.id
}

// Record appends one sample, assigning its session and sequence number.
func (r *Recorder) Record(s Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("recorder for session %s is closed", r.id)
	}

	r.seq++
	s.SessionID = r.id
	s.Seq = r.seq
	r.buf = append(r.buf, s)

	r.frames++
	if s.Detected {
		r.detections++
	}

	if len(r.buf) >= r.batch {
		return r.flushLocked()
	}
	return nil
}

// Flush writes buffered samples.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.buf) == 0 {
		return nil
	}
	if err := r.samples.Append(r.buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	r.buf = r.buf[:0]
	return nil
}

// Close flushes remaining samples and marks the session finished.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.flushLocked(); err != nil {
		return err
	}
	return r.sessions.Finish(r.id, r.frames, r.detections)
}
