package capture

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/headtrack/internal/log"
)

const readRetryDelay = 100 * time.Millisecond

// Producer reads frames from a Camera and pushes them into a Queue.
type Producer struct {
	camera Camera
	queue  *Queue[Frame]
	scale  func() float64
	seq    uint64
	now    func() time.Time
}

// NewProducer creates a producer. scale is consulted for every frame so the
// processing scale can change while running; nil means full size.
func NewProducer(camera Camera, queue *Queue[Frame], scale func() float64) *Producer {
	if scale == nil {
		scale = func() float64 { return 1 }
	}
	return &Producer{
		camera: camera,
		queue:  queue,
		scale:  scale,
		now:    time.Now,
	}
}

// Run captures until ctx is cancelled or the camera reports the end of its
// stream, then closes the queue. Transient read errors are logged and
// retried; a camera that is not open is fatal.
func (p *Producer) Run(ctx context.Context) error {
	defer p.queue.Close()

	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		mat, err := p.camera.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, ErrEndOfStream):
				log.Info("capture finished", "frames", p.seq)
				return nil
			case errors.Is(err, ErrCameraNotOpen):
				return err
			}

			failures++
			if failures == 1 || failures%50 == 0 {
				log.Warn("frame read failed", "error", err, "consecutive", failures)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}
		failures = 0

		factor := p.scale()
		Rescale(mat, factor)

		p.seq++
		p.queue.Push(Frame{
			Mat:        mat,
			Seq:        p.seq,
			CapturedAt: p.now(),
			Scale:      factor,
		})
	}
}
