package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/headtrack/internal/capture"
	"github.com/ayusman/headtrack/internal/detector"
	"github.com/ayusman/headtrack/internal/gesture"
	"github.com/ayusman/headtrack/internal/log"
	"github.com/ayusman/headtrack/internal/store"
	"github.com/ayusman/headtrack/internal/transport"
)

// runPipeline is the consumer side of the capture queue. It works on the
// newest queued frame unless EveryFrame is set. For every frame it:
//  1. applies the latest settings to the tracking pipeline
//  2. runs the detector (skipped while paused)
//  3. feeds the primary face into the tracking pipeline
//  4. sends a freshly detected pose, with the gesture flag, to the sink
//  5. records metrics and the session sample, then publishes the status
//
// It returns nil when the queue is closed or ctx is cancelled.
func (a *App) runPipeline(ctx context.Context, queue *capture.Queue[capture.Frame]) error {
	pop := queue.PopLatest
	if a.config.EveryFrame {
		pop = queue.Pop
	}

	for {
		frame, err := pop(ctx)
		if err != nil {
			if errors.Is(err, capture.ErrQueueClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = a.processFrame(ctx, frame)
		a.keepPreview(frame)
		frame.Close()
		if err != nil {
			return err
		}
	}
}

func (a *App) processFrame(ctx context.Context, frame capture.Frame) error {
	settings := a.Settings()
	a.pipeline.SetStrategy(settings.Strategy)
	a.pipeline.SetMissPolicy(settings.MissPolicy)

	if settings.Paused {
		return nil
	}

	start := a.now()
	result, err := a.config.Detector.Detect(frame.Mat)
	if err != nil {
		// Treated like a frame without a face so the miss policy applies.
		log.Warn("detection failed", "seq", frame.Seq, "error", err)
		result = detector.Result{}
	}

	width, height := frame.Size()
	pose, err := a.pipeline.Process(result.PrimaryFace(), width, height)
	if err != nil {
		return fmt.Errorf("frame %d: %w", frame.Seq, err)
	}
	flag := a.config.Gesture && gesture.Flag(result.Hands)
	latency := a.now().Sub(start)

	// Held poses stay in the status but only fresh detections go out.
	if pose.Valid && !pose.Held {
		msg := transport.Message{Pose: pose, Gesture: flag, At: frame.CapturedAt}
		if err := a.config.Sink.Send(ctx, msg); err != nil && ctx.Err() == nil {
			log.Debug("send failed", "seq", frame.Seq, "error", err)
		}
	}

	fps, updated := a.fps.Tick()
	if updated {
		log.Debug("frame rate", "fps", fps, "strategy", settings.Strategy, "scale", frame.Scale)
	}

	if a.config.Timing != nil {
		if err := a.config.Timing.Record(latency); err != nil {
			log.Warn("timing log write failed", "error", err)
		}
	}

	detected := !pose.Held && pose.Valid
	if a.config.Recorder != nil {
		sample := store.Sample{
			CapturedAt: frame.CapturedAt,
			Detected:   detected,
			X:          pose.X,
			Y:          pose.Y,
			Z:          pose.Z,
			RefX:       pose.RefX,
			RefY:       pose.RefY,
			DistanceCM: pose.DistanceCM,
			LatencyUS:  latency.Microseconds(),
		}
		if err := a.config.Recorder.Record(sample); err != nil {
			log.Warn("sample record failed", "error", err)
		}
	}

	a.status.Store(&Status{
		Seq:       frame.Seq,
		Pose:      pose,
		Gesture:   flag,
		Tracking:  detected,
		FPS:       a.fps.FPS(),
		LatencyUS: float64(latency.Microseconds()),
		At:        frame.CapturedAt,
	})
	return nil
}

// keepPreview copies the frame for the MJPEG stream.
func (a *App) keepPreview(frame capture.Frame) {
	if frame.Mat == nil || frame.Mat.Empty() {
		return
	}
	a.previewMu.Lock()
	frame.Mat.CopyTo(&a.preview)
	a.hasFrame = true
	a.previewMu.Unlock()
}
