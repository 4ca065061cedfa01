package gesture

import (
	"errors"
	"testing"

	"github.com/ayusman/headtrack/internal/detector"
	"github.com/ayusman/headtrack/internal/landmark"
)

func TestIsVictory(t *testing.T) {
	tests := []struct {
		name string
		hand landmark.Set
		want bool
	}{
		{"victory", detector.VictoryHand(), true},
		// Index and middle are up, so an open palm also counts.
		{"open palm", detector.OpenPalmHand(), true},
		{"thumbs up", detector.ThumbsUpHand(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsVictory(&tt.hand)
			if err != nil {
				t.Fatalf("IsVictory() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsVictory() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsVictory_OnlyIndexRaised(t *testing.T) {
	hand := detector.ThumbsUpHand()
	hand.Points[landmark.IndexTip].Y = hand.Points[landmark.IndexPIP].Y - 0.1

	got, err := IsVictory(&hand)
	if err != nil {
		t.Fatalf("IsVictory() error = %v", err)
	}
	if got {
		t.Error("a single raised finger is not a victory sign")
	}
}

func TestIsVictory_ShortSet(t *testing.T) {
	_, err := IsVictory(&landmark.Set{Points: make([]landmark.Point3D, 5)})
	if !errors.Is(err, landmark.ErrLayoutMismatch) {
		t.Errorf("error = %v, want ErrLayoutMismatch", err)
	}

	if _, err := IsVictory(nil); err == nil {
		t.Error("expected error for nil hand")
	}
}

func TestFlag(t *testing.T) {
	if Flag(nil) {
		t.Error("no hands should not raise the flag")
	}

	thumbs := detector.ThumbsUpHand()
	thumbs.Score = 0.99
	victory := detector.VictoryHand()
	victory.Score = 0.5

	if Flag([]landmark.Set{victory, thumbs}) {
		t.Error("flag should follow the highest scoring hand")
	}
	if !Flag([]landmark.Set{victory}) {
		t.Error("flag should be raised for a victory hand")
	}
	if Flag([]landmark.Set{{Points: make([]landmark.Point3D, 3)}}) {
		t.Error("malformed hand should not raise the flag")
	}
}
