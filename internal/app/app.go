// Package app runs the head tracker: it owns the capture producer, the
// detector, the tracking pipeline and the output sink, and exposes the
// runtime settings shared with the tray and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/headtrack/internal/capture"
	"github.com/ayusman/headtrack/internal/detector"
	"github.com/ayusman/headtrack/internal/log"
	"github.com/ayusman/headtrack/internal/metrics"
	"github.com/ayusman/headtrack/internal/store"
	"github.com/ayusman/headtrack/internal/tracking"
	"github.com/ayusman/headtrack/internal/transport"
)

// ErrNoFrame is returned by PreviewJPEG before any frame was captured.
var ErrNoFrame = errors.New("no frame captured yet")

// Config holds the collaborators and options of an App.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Sink     transport.Sink
	Tracking tracking.Config

	// Gesture computes the victory flag from the primary hand.
	Gesture bool

	ScaleIndex int
	Paused     bool

	// QueueSize is the capture hand-off capacity. Zero uses
	// capture.DefaultQueueSize.
	QueueSize int
	// EveryFrame processes queued frames in capture order. By default the
	// loop takes the newest queued frame and drops the older ones.
	EveryFrame  bool
	FPSInterval time.Duration

	// Timing and Recorder are optional.
	Timing   *metrics.TimingLog
	Recorder *store.Recorder
}

// App is the head tracker. Run drives the frame loop; the remaining methods
// are safe to call from any goroutine.
type App struct {
	config   Config
	pipeline *tracking.Pipeline
	fps      *metrics.FPSMeter

	settings atomic.Pointer[Settings]
	status   atomic.Pointer[Status]
	running  atomic.Bool

	previewMu sync.Mutex
	preview   gocv.Mat
	hasFrame  bool

	now func() time.Time
}

// New creates an App. Camera, Detector and Sink are required.
func New(config Config) (*App, error) {
	switch {
	case config.Camera == nil:
		return nil, errors.New("app: camera is required")
	case config.Detector == nil:
		return nil, errors.New("app: detector is required")
	case config.Sink == nil:
		return nil, errors.New("app: sink is required")
	}
	if config.QueueSize <= 0 {
		config.QueueSize = capture.DefaultQueueSize
	}

	a := &App{
		config:   config,
		pipeline: tracking.New(config.Tracking),
		fps:      metrics.NewFPSMeter(config.FPSInterval),
		preview:  gocv.NewMat(),
		now:      time.Now,
	}

	initial := Settings{
		Strategy:   config.Tracking.Strategy,
		ScaleIndex: config.ScaleIndex,
		Paused:     config.Paused,
		MissPolicy: config.Tracking.MissPolicy,
	}.normalized()
	a.settings.Store(&initial)
	a.status.Store(&Status{})

	return a, nil
}

// Settings returns the current settings.
func (a *App) Settings() Settings {
	return *a.settings.Load()
}

// UpdateSettings applies fn to the current settings and publishes the
// result. Concurrent updates are serialized by retrying on conflict.
func (a *App) UpdateSettings(fn func(Settings) Settings) Settings {
	for {
		old := a.settings.Load()
		next := fn(*old).normalized()
		if a.settings.CompareAndSwap(old, &next) {
			if next != *old {
				log.Info("settings changed",
					"strategy", next.Strategy,
					"scale", next.Scale(),
					"paused", next.Paused,
					"miss_policy", next.MissPolicy,
				)
			}
			return next
		}
	}
}

// Status returns the status published after the most recent frame.
func (a *App) Status() Status {
	return *a.status.Load()
}

// Running reports whether Run is active.
func (a *App) Running() bool {
	return a.running.Load()
}

// PreviewJPEG encodes the most recent frame as JPEG.
func (a *App) PreviewJPEG() ([]byte, error) {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()

	if !a.hasFrame || a.preview.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, a.preview)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Run opens the camera and processes frames until ctx is cancelled, the
// camera stream ends, or the tracking pipeline reports a landmark layout
// mismatch. The camera, sink, timing log and recorder are left open; the
// caller owns them.
func (a *App) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return errors.New("app: already running")
	}
	defer a.running.Store(false)

	if !a.config.Camera.IsOpen() {
		if err := a.config.Camera.Open(); err != nil {
			return fmt.Errorf("open camera: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := capture.NewQueue(a.config.QueueSize, func(f capture.Frame) { f.Close() })
	producer := capture.NewProducer(a.config.Camera, queue, func() float64 {
		return a.Settings().Scale()
	})

	producerErr := make(chan error, 1)
	go func() {
		producerErr <- producer.Run(ctx)
	}()

	log.Info("tracking started",
		"layout", a.pipeline.Layout().Name,
		"strategy", a.pipeline.Strategy(),
		"miss_policy", a.pipeline.MissPolicy(),
	)

	err := a.runPipeline(ctx, queue)
	cancel()
	perr := <-producerErr
	queue.Drain()

	log.Info("tracking stopped", "dropped_frames", queue.Dropped())

	if err != nil {
		return err
	}
	return perr
}

// Close releases the preview buffer. Run must not be active.
func (a *App) Close() error {
	a.previewMu.Lock()
	defer a.previewMu.Unlock()
	return a.preview.Close()
}
