// Package transport delivers tracked poses to the consuming engine as one
// ASCII text line per processed frame.
package transport

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/headtrack/internal/tracking"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("sink closed")

// Message is one frame's output.
type Message struct {
	Pose    tracking.Pose
	Gesture bool
	At      time.Time
}

// Sink consumes messages. Implementations must not block the caller on
// network I/O.
type Sink interface {
	Send(ctx context.Context, msg Message) error
	Close() error
}

// Format controls how a message is rendered on the wire.
type Format struct {
	// Separator between fields: " " or ",".
	Separator string `json:"separator"`
	// Timestamp prefixes the line with unix seconds.
	Timestamp bool `json:"timestamp"`
	// Gesture appends a 0|1 gesture flag as a fourth field.
	Gesture bool `json:"gesture"`
}

// DefaultFormat is "x y z".
func DefaultFormat() Format {
	return Format{Separator: " "}
}

// Validate rejects separators the engine side cannot split on.
func (f Format) Validate() error {
	switch f.Separator {
	case " ", ",":
		return nil
	}
	return fmt.Errorf("unsupported separator %q", f.Separator)
}

// Encode renders msg as a text line without a trailing newline.
func (f Format) Encode(msg Message) string {
	sep := f.Separator
	if sep == "" {
		sep = " "
	}

	fields := make([]string, 0, 5)
	if f.Timestamp {
		at := msg.At
		if at.IsZero() {
			at = time.Now()
		}
		fields = append(fields, strconv.FormatFloat(float64(at.UnixMicro())/1e6, 'f', 6, 64))
	}
	fields = append(fields,
		formatFloat(msg.Pose.X),
		formatFloat(msg.Pose.Y),
		formatFloat(msg.Pose.Z),
	)
	if f.Gesture {
		flag := "0"
		if msg.Gesture {
			flag = "1"
		}
		fields = append(fields, flag)
	}

	return strings.Join(fields, sep)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
