// Package config holds the application configuration: defaults, JSON file
// loading and validation.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/headtrack/internal/capture"
	"github.com/ayusman/headtrack/internal/detector"
	"github.com/ayusman/headtrack/internal/estimate"
	"github.com/ayusman/headtrack/internal/landmark"
	"github.com/ayusman/headtrack/internal/smoothing"
	"github.com/ayusman/headtrack/internal/tracking"
	"github.com/ayusman/headtrack/internal/transport"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

const maxFileSize = 1 << 20

// Config is the full application configuration.
type Config struct {
	Camera    capture.Config  `json:"camera"`
	Detector  detector.Config `json:"detector"`
	Tracking  Tracking        `json:"tracking"`
	Transport Transport       `json:"transport"`
	HTTP      HTTP            `json:"http"`
	Store     Store           `json:"store"`
	Metrics   Metrics         `json:"metrics"`
	LogLevel  string          `json:"log_level"`
	Tray      bool            `json:"tray"`
}

// Tracking configures the pose pipeline.
type Tracking struct {
	// Layout overrides the detector's landmark layout, e.g. "face_mesh_nose".
	Layout string `json:"layout,omitempty"`

	Strategy         smoothing.Strategy  `json:"strategy"`
	Smoothing        smoothing.Params    `json:"smoothing"`
	MissPolicy       tracking.MissPolicy `json:"miss_policy"`
	ResetAfterMisses int                 `json:"reset_after_misses"`
	FocalLengthMM    float64             `json:"focal_length_mm"`
	FaceWidthCM      float64             `json:"face_width_cm"`

	// ScaleIndex selects the initial entry of capture.ScaleFactors.
	ScaleIndex int `json:"scale_index"`
}

// Transport configures the UDP output.
type Transport struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Separator string `json:"separator"`
	Timestamp bool   `json:"timestamp"`
	Gesture   bool   `json:"gesture"`
	QueueSize int    `json:"queue_size"`
}

// HTTP configures the control API. An empty Addr disables it.
type HTTP struct {
	Addr string `json:"addr"`
}

// Store configures session recording.
type Store struct {
	Path      string `json:"path"`
	Record    bool   `json:"record"`
	BatchSize int    `json:"batch_size"`
}

// Metrics configures performance logging.
type Metrics struct {
	// TimingLog, when set, receives one processing time per frame.
	TimingLog     string `json:"timing_log,omitempty"`
	FPSIntervalMS int    `json:"fps_interval_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Camera:   capture.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Tracking: Tracking{
			Strategy:         smoothing.StrategyKalman,
			Smoothing:        smoothing.DefaultParams(),
			MissPolicy:       tracking.MissHold,
			ResetAfterMisses: 60,
			FocalLengthMM:    estimate.DefaultFocalLengthMM,
			FaceWidthCM:      estimate.DefaultFaceWidthCM,
		},
		Transport: Transport{
			Host:      transport.DefaultHost,
			Port:      transport.DefaultPort,
			Separator: " ",
			QueueSize: transport.DefaultQueueSize,
		},
		HTTP: HTTP{Addr: "127.0.0.1:8080"},
		Store: Store{
			Path:      DefaultStorePath(),
			BatchSize: 100,
		},
		Metrics: Metrics{
			FPSIntervalMS: 1000,
		},
		LogLevel: "info",
	}
}

// DefaultStorePath returns ~/.headtrack/headtrack.db, or a relative path if
// the home directory is unknown.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "headtrack.db"
	}
	return filepath.Join(home, ".headtrack", "headtrack.db")
}

// Load reads a JSON file over the defaults and validates the result.
// Fields missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports the first problem.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
	}

	if c.Camera.Width < 0 || c.Camera.Height < 0 {
		return invalid("camera size %dx%d", c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return invalid("camera fps must be positive, got %d", c.Camera.FPS)
	}

	switch c.Detector.Kind {
	case detector.KindMediaPipe, detector.KindHaar, detector.KindMock:
	default:
		return invalid("unknown detector kind %q", c.Detector.Kind)
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return invalid("min_confidence %v outside [0,1]", c.Detector.MinConfidence)
	}

	t := c.Tracking
	if t.Layout != "" {
		l, err := landmark.LayoutByName(t.Layout)
		if err != nil {
			return invalid("%v", err)
		}
		produced, err := detector.LayoutFor(c.Detector.Kind)
		if err != nil {
			return invalid("%v", err)
		}
		if err := l.Compatible(produced); err != nil {
			return invalid("%v detector: %v", c.Detector.Kind, err)
		}
	}
	if t.Smoothing.Alpha <= 0 || t.Smoothing.Alpha > 1 {
		return invalid("smoothing alpha %v outside (0,1]", t.Smoothing.Alpha)
	}
	if t.Smoothing.ProcessNoise <= 0 || t.Smoothing.MeasurementNoise <= 0 {
		return invalid("kalman noise must be positive")
	}
	if t.Smoothing.AccelStdDev <= 0 || t.Smoothing.MeasurementStdDev <= 0 {
		return invalid("planar filter deviations must be positive")
	}
	if t.ResetAfterMisses < 0 {
		return invalid("reset_after_misses must not be negative")
	}
	if t.FocalLengthMM <= 0 || t.FaceWidthCM <= 0 {
		return invalid("focal length and face width must be positive")
	}
	if t.ScaleIndex < 0 || t.ScaleIndex >= len(capture.ScaleFactors) {
		return invalid("scale_index %d out of range", t.ScaleIndex)
	}

	if c.Transport.Port <= 0 || c.Transport.Port > 65535 {
		return invalid("transport port %d", c.Transport.Port)
	}
	if err := c.TransportFormat().Validate(); err != nil {
		return invalid("%v", err)
	}

	if c.Store.Record && c.Store.Path == "" {
		return invalid("recording requires a store path")
	}

	return nil
}

// TransportFormat returns the wire format.
func (c *Config) TransportFormat() transport.Format {
	return transport.Format{
		Separator: c.Transport.Separator,
		Timestamp: c.Transport.Timestamp,
		Gesture:   c.Transport.Gesture,
	}
}

// UDP returns the sink configuration.
func (c *Config) UDP() transport.UDPConfig {
	return transport.UDPConfig{
		Host:      c.Transport.Host,
		Port:      c.Transport.Port,
		Format:    c.TransportFormat(),
		QueueSize: c.Transport.QueueSize,
	}
}

// Pipeline returns the tracking configuration for a detector producing sets
// in the given layout. An explicit Tracking.Layout takes precedence but must
// index the same detector model.
func (c *Config) Pipeline(detected landmark.Layout) (tracking.Config, error) {
	layout := detected
	if c.Tracking.Layout != "" {
		l, err := landmark.LayoutByName(c.Tracking.Layout)
		if err != nil {
			return tracking.Config{}, err
		}
		if err := l.Compatible(detected); err != nil {
			return tracking.Config{}, fmt.Errorf("tracking.layout: %w", err)
		}
		layout = l
	}

	return tracking.Config{
		Layout:           layout,
		Strategy:         c.Tracking.Strategy,
		Params:           c.Tracking.Smoothing,
		MissPolicy:       c.Tracking.MissPolicy,
		ResetAfterMisses: c.Tracking.ResetAfterMisses,
		Estimator:        estimate.NewEstimator(c.Tracking.FocalLengthMM, c.Tracking.FaceWidthCM),
	}, nil
}
