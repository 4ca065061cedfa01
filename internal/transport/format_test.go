package transport

import (
	"testing"
	"time"

	"github.com/ayusman/headtrack/internal/tracking"
)

func TestFormat_Encode(t *testing.T) {
	pose := tracking.Pose{X: 0.12345, Y: -0.5, Z: 4.005}
	at := time.Unix(1700000000, 250000000)

	tests := []struct {
		name   string
		format Format
		msg    Message
		want   string
	}{
		{"space", Format{Separator: " "}, Message{Pose: pose}, "0.1235 -0.5000 4.0050"},
		{"comma", Format{Separator: ","}, Message{Pose: pose}, "0.1235,-0.5000,4.0050"},
		{"empty separator defaults to space", Format{}, Message{Pose: pose}, "0.1235 -0.5000 4.0050"},
		{"timestamp", Format{Separator: " ", Timestamp: true}, Message{Pose: pose, At: at}, "1700000000.250000 0.1235 -0.5000 4.0050"},
		{"gesture off", Format{Separator: ",", Gesture: true}, Message{Pose: pose}, "0.1235,-0.5000,4.0050,0"},
		{"gesture on", Format{Separator: ",", Gesture: true}, Message{Pose: pose, Gesture: true}, "0.1235,-0.5000,4.0050,1"},
		{"zero pose", Format{Separator: " "}, Message{}, "0.0000 0.0000 0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.format.Encode(tt.msg); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat_Validate(t *testing.T) {
	for _, sep := range []string{" ", ","} {
		if err := (Format{Separator: sep}).Validate(); err != nil {
			t.Errorf("Validate(%q) = %v", sep, err)
		}
	}
	if err := (Format{Separator: ";"}).Validate(); err == nil {
		t.Error("expected error for ';'")
	}
}
