// Package gesture classifies static hand poses from landmark sets.
package gesture

import (
	"fmt"

	"github.com/ayusman/headtrack/internal/landmark"
)

// IsVictory reports whether hand shows a "V": the index and middle finger
// tips are both above their PIP joints. Image y grows downward, so "above"
// is a smaller y. The other fingers are not inspected.
func IsVictory(hand *landmark.Set) (bool, error) {
	if hand.Len() < landmark.HandPoints {
		return false, fmt.Errorf("%w: hand needs %d points, got %d",
			landmark.ErrLayoutMismatch, landmark.HandPoints, hand.Len())
	}

	return raised(hand, landmark.IndexTip, landmark.IndexPIP) &&
		raised(hand, landmark.MiddleTip, landmark.MiddlePIP), nil
}

func raised(hand *landmark.Set, tip, pip int) bool {
	return hand.Points[tip].Y < hand.Points[pip].Y
}

// Flag evaluates IsVictory on the primary hand of hands. No hand, or a hand
// with the wrong shape, yields false.
func Flag(hands []landmark.Set) bool {
	hand := landmark.Primary(hands)
	if hand == nil {
		return false
	}
	ok, err := IsVictory(hand)
	return err == nil && ok
}
