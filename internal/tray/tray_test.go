package tray

import (
	"sync"
	"testing"

	"github.com/ayusman/headtrack/internal/app"
	"github.com/ayusman/headtrack/internal/smoothing"
	"github.com/ayusman/headtrack/internal/tracking"
)

type fakeTracker struct {
	mu       sync.Mutex
	settings app.Settings
	status   app.Status
}

func (f *fakeTracker) Settings() app.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings
}

func (f *fakeTracker) UpdateSettings(fn func(app.Settings) app.Settings) app.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = fn(f.settings)
	return f.settings
}

func (f *fakeTracker) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func TestTray_CycleStrategy(t *testing.T) {
	tracker := &fakeTracker{settings: app.Settings{Strategy: smoothing.StrategyNone}}
	tr := New(tracker)

	want := []smoothing.Strategy{
		smoothing.StrategyExponential,
		smoothing.StrategyKalman,
		smoothing.StrategyKalman2D,
		smoothing.StrategyNone,
	}
	for _, w := range want {
		got := tr.handleStrategy()
		if got.Strategy != w {
			t.Errorf("handleStrategy() = %v, want %v", got.Strategy, w)
		}
	}
}

func TestTray_CycleScale(t *testing.T) {
	tracker := &fakeTracker{}
	tr := New(tracker)

	tests := []struct {
		index int
		title string
	}{
		{1, "Scale: 66%"},
		{2, "Scale: 33%"},
		{0, "Scale: 100%"},
	}
	for _, tt := range tests {
		got := tr.handleScale()
		if got.ScaleIndex != tt.index {
			t.Errorf("ScaleIndex = %d, want %d", got.ScaleIndex, tt.index)
		}
		if title := scaleTitle(got); title != tt.title {
			t.Errorf("scaleTitle() = %q, want %q", title, tt.title)
		}
	}
}

func TestTray_TogglePause(t *testing.T) {
	tracker := &fakeTracker{}
	tr := New(tracker)

	if s := tr.handlePause(); !s.Paused || pauseTitle(s) != "○ Paused" {
		t.Errorf("first toggle: %+v", s)
	}
	if s := tr.handlePause(); s.Paused || pauseTitle(s) != "● Tracking" {
		t.Errorf("second toggle: %+v", s)
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New(&fakeTracker{})

	called := false
	tr.OnSettings(func() { called = true })
	tr.handleSettings()

	if !called {
		t.Error("expected settings callback to be called")
	}
}

func TestStatusTitle(t *testing.T) {
	tests := []struct {
		name   string
		status app.Status
		want   string
	}{
		{"no face", app.Status{FPS: 30}, "No face (30 fps)"},
		{
			"tracking",
			app.Status{Pose: tracking.Pose{X: 0.5, Y: -0.25, Z: 0.1, Valid: true}, FPS: 29.6},
			"Pose +0.50 -0.25 +0.10 (30 fps)",
		},
		{
			"held",
			app.Status{Pose: tracking.Pose{X: -1, Valid: true, Held: true}, FPS: 12},
			"Held -1.00 +0.00 +0.00 (12 fps)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusTitle(tt.status); got != tt.want {
				t.Errorf("statusTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStrategyTitle(t *testing.T) {
	got := strategyTitle(app.Settings{Strategy: smoothing.StrategyKalman2D})
	if got != "Smoothing: kalman2d" {
		t.Errorf("strategyTitle() = %q", got)
	}
}
