package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/headtrack/internal/log"
)

// Defaults for UDPConfig.
const (
	DefaultHost        = "127.0.0.1"
	DefaultPort        = 6969
	DefaultQueueSize   = 64
	DefaultLogInterval = 5 * time.Second
)

// UDPConfig configures a UDPSink.
type UDPConfig struct {
	Host        string
	Port        int
	Format      Format
	QueueSize   int
	LogInterval time.Duration
}

// Stats counts sink outcomes since creation.
type Stats struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
	Failed  uint64 `json:"failed"`
}

// UDPSink sends each message as a single datagram. Send only queues the
// encoded line; a background goroutine writes it. When the queue is full the
// message is dropped. Failed writes are counted and never retried.
type UDPSink struct {
	conn        *net.UDPConn
	format      Format
	address     string
	queue       chan []byte
	logInterval time.Duration

	sent    atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64

	stop      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewUDPSink resolves the target address and opens the socket.
func NewUDPSink(cfg UDPConfig) (*UDPSink, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.LogInterval <= 0 {
		cfg.LogInterval = DefaultLogInterval
	}
	if err := cfg.Format.Validate(); err != nil {
		return nil, fmt.Errorf("udp sink: %w", err)
	}

	address := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", address, err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return &UDPSink{
		conn:        conn,
		format:      cfg.Format,
		address:     address,
		queue:       make(chan []byte, cfg.QueueSize),
		logInterval: cfg.LogInterval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

// Start launches the writer goroutine. It runs until ctx is cancelled or
// the sink is closed. Calling Start more than once has no effect.
func (s *UDPSink) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	go s.loop(ctx)
	log.Info("sending poses", "address", s.address)
}

func (s *UDPSink) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.logInterval)
	defer ticker.Stop()

	var (
		failedSinceLog uint64
		droppedAtLog   uint64
		lastErr        error
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case line := <-s.queue:
			if _, err := s.conn.Write(line); err != nil {
				s.failed.Add(1)
				failedSinceLog++
				lastErr = err
				continue
			}
			s.sent.Add(1)
		case <-ticker.C:
			dropped := s.dropped.Load()
			if failedSinceLog > 0 || dropped > droppedAtLog {
				log.Warn("pose datagrams lost",
					"address", s.address,
					"failed", failedSinceLog,
					"dropped", dropped-droppedAtLog,
					"error", lastErr)
				failedSinceLog = 0
				droppedAtLog = dropped
				lastErr = nil
			}
		}
	}
}

// Send encodes msg and queues it without blocking.
func (s *UDPSink) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}

	line := []byte(s.format.Encode(msg))
	select {
	case s.queue <- line:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Address returns the destination host:port.
func (s *UDPSink) Address() string { return s.address }

// Stats returns the current counters.
func (s *UDPSink) Stats() Stats {
	return Stats{
		Sent:    s.sent.Load(),
		Dropped: s.dropped.Load(),
		Failed:  s.failed.Load(),
	}
}

// Close stops the writer goroutine and closes the socket. Queued lines that
// were not yet written are discarded.
func (s *UDPSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.stop)
		if s.started.Load() {
			<-s.done
		}
		err = s.conn.Close()
	})
	return err
}
