// Command headtrack tracks the user's head with a webcam and streams the
// normalized pose over UDP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/headtrack/internal/app"
	"github.com/ayusman/headtrack/internal/capture"
	"github.com/ayusman/headtrack/internal/config"
	"github.com/ayusman/headtrack/internal/detector"
	"github.com/ayusman/headtrack/internal/log"
	"github.com/ayusman/headtrack/internal/metrics"
	"github.com/ayusman/headtrack/internal/server"
	"github.com/ayusman/headtrack/internal/smoothing"
	"github.com/ayusman/headtrack/internal/store"
	"github.com/ayusman/headtrack/internal/tracking"
	"github.com/ayusman/headtrack/internal/transport"
	"github.com/ayusman/headtrack/internal/tray"
)

type flags struct {
	config    string
	camera    int
	video     string
	detector  string
	cascade   string
	layout    string
	smoothing string
	miss      string
	scale     int
	host      string
	port      int
	sep       string
	timestamp bool
	gesture   bool
	http      string
	record    bool
	timingLog string
	logLevel  string
	tray      bool
}

func main() {
	var f flags
	flag.StringVar(&f.config, "config", "", "path to a JSON config file")
	flag.IntVar(&f.camera, "camera", 0, "camera device index")
	flag.StringVar(&f.video, "video", "", "replay a video file instead of the camera")
	flag.StringVar(&f.detector, "detector", "", "landmark detector: mediapipe, haar or mock")
	flag.StringVar(&f.cascade, "cascade", "", "Haar cascade XML for -detector haar")
	flag.StringVar(&f.layout, "layout", "", "landmark layout override, e.g. face_mesh_nose")
	flag.StringVar(&f.smoothing, "smoothing", "", "smoothing strategy: none, exponential, kalman or kalman2d")
	flag.StringVar(&f.miss, "miss", "", "missed detection policy: hold or clear")
	flag.IntVar(&f.scale, "scale", 0, "initial frame scale index")
	flag.StringVar(&f.host, "host", "", "UDP destination host")
	flag.IntVar(&f.port, "port", 0, "UDP destination port")
	flag.StringVar(&f.sep, "sep", "", `field separator, " " or ","`)
	flag.BoolVar(&f.timestamp, "timestamp", false, "prefix each line with a unix timestamp")
	flag.BoolVar(&f.gesture, "gesture", false, "append the victory-hand flag to each line")
	flag.StringVar(&f.http, "http", "", `control API address, "off" to disable`)
	flag.BoolVar(&f.record, "record", false, "record the session to the store")
	flag.StringVar(&f.timingLog, "timing-log", "", "append per-frame processing times (µs) to this file")
	flag.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	flag.BoolVar(&f.tray, "tray", false, "show the system tray menu")
	flag.Parse()

	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "headtrack: %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Error("headtrack failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies the flags that were
// set on the command line.
func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		loaded, err := config.Load(f.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["camera"] {
		cfg.Camera.Device = f.camera
	}
	if set["video"] {
		cfg.Camera.VideoFile = f.video
	}
	if set["detector"] {
		cfg.Detector.Kind = f.detector
	}
	if set["cascade"] {
		cfg.Detector.CascadePath = f.cascade
	}
	if set["layout"] {
		cfg.Tracking.Layout = f.layout
	}
	if set["smoothing"] {
		s, err := smoothing.ParseStrategy(f.smoothing)
		if err != nil {
			return nil, err
		}
		cfg.Tracking.Strategy = s
	}
	if set["miss"] {
		m, err := tracking.ParseMissPolicy(f.miss)
		if err != nil {
			return nil, err
		}
		cfg.Tracking.MissPolicy = m
	}
	if set["scale"] {
		cfg.Tracking.ScaleIndex = f.scale
	}
	if set["host"] {
		cfg.Transport.Host = f.host
	}
	if set["port"] {
		cfg.Transport.Port = f.port
	}
	if set["sep"] {
		cfg.Transport.Separator = f.sep
	}
	if set["timestamp"] {
		cfg.Transport.Timestamp = f.timestamp
	}
	if set["gesture"] {
		cfg.Transport.Gesture = f.gesture
	}
	if set["http"] {
		cfg.HTTP.Addr = f.http
		if f.http == "off" {
			cfg.HTTP.Addr = ""
		}
	}
	if set["record"] {
		cfg.Store.Record = f.record
	}
	if set["timing-log"] {
		cfg.Metrics.TimingLog = f.timingLog
	}
	if set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if set["tray"] {
		cfg.Tray = f.tray
	}
	if cfg.Transport.Gesture {
		cfg.Detector.Hands = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	det, err := detector.New(cfg.Detector)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}
	defer det.Close()

	trackCfg, err := cfg.Pipeline(det.Layout())
	if err != nil {
		return err
	}

	sink, err := transport.NewUDPSink(cfg.UDP())
	if err != nil {
		return err
	}
	sink.Start(ctx)
	defer func() {
		sink.Close()
		stats := sink.Stats()
		log.Info("transport closed", "sent", stats.Sent, "dropped", stats.Dropped, "failed", stats.Failed)
	}()

	camera := capture.NewCamera(cfg.Camera)
	defer camera.Close()

	var st *store.Store
	if cfg.Store.Path != "" && (cfg.Store.Record || cfg.HTTP.Addr != "") {
		st, err = store.New(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
	}

	var recorder *store.Recorder
	if cfg.Store.Record && st != nil {
		recorder, err = st.NewRecorder(store.Session{
			Detector:   cfg.Detector.Kind,
			Strategy:   trackCfg.Strategy.String(),
			MissPolicy: trackCfg.MissPolicy.String(),
		}, cfg.Store.BatchSize)
		if err != nil {
			return err
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Warn("close session recorder", "error", err)
			}
		}()
		log.Info("recording session", "id", recorder.SessionID(), "store", st.Path())
	}

	var timing *metrics.TimingLog
	if cfg.Metrics.TimingLog != "" {
		timing, err = metrics.OpenTimingLog(cfg.Metrics.TimingLog)
		if err != nil {
			return err
		}
		defer timing.Close()
	}

	a, err := app.New(app.Config{
		Camera:      camera,
		Detector:    det,
		Sink:        sink,
		Tracking:    trackCfg,
		Gesture:     cfg.Transport.Gesture,
		ScaleIndex:  cfg.Tracking.ScaleIndex,
		FPSInterval: time.Duration(cfg.Metrics.FPSIntervalMS) * time.Millisecond,
		Timing:      timing,
		Recorder:    recorder,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.HTTP.Addr != "" {
		webDir := findWebDir()
		if webDir != "" {
			log.Info("serving static files", "dir", webDir)
		}
		srv := server.New(server.Config{
			StaticDir: webDir,
			Store:     st,
			Tracker:   a,
		})
		defer srv.Close()

		go func() {
			log.Info("control API listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
				log.Error("control API failed", "error", err)
			}
		}()
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- a.Run(ctx)
		stop()
	}()

	if cfg.Tray {
		t := tray.New(a)
		t.OnQuit(stop)
		if cfg.HTTP.Addr != "" {
			url := "http://" + cfg.HTTP.Addr + "/"
			t.OnSettings(func() { openBrowser(url) })
		}
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
	}

	err = <-runErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.headtrack/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".headtrack", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn("open browser", "url", url, "error", err)
	}
}
