package smoothing

import (
	"fmt"
	"strings"
)

// Strategy selects which filter the tracking pipeline runs on each axis.
type Strategy int

// Available strategies.
const (
	// StrategyNone passes raw measurements through.
	StrategyNone Strategy = iota
	// StrategyExponential runs an Exponential smoother per axis.
	StrategyExponential
	// StrategyKalman runs a constant-velocity Kalman filter per axis.
	StrategyKalman
	// StrategyKalman2D filters x and y jointly with a Planar filter and z
	// with a scalar Kalman filter.
	StrategyKalman2D
)

var strategyNames = [...]string{
	StrategyNone:        "none",
	StrategyExponential: "exponential",
	StrategyKalman:      "kalman",
	StrategyKalman2D:    "kalman2d",
}

// String returns the strategy name.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Next returns the following strategy, wrapping around. Used by toggles.
func (s Strategy) Next() Strategy {
	return Strategy((int(s) + 1) % len(strategyNames))
}

// ParseStrategy parses a strategy name. "ema" and "off" are accepted aliases.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "":
		return StrategyNone, nil
	case "exponential", "ema":
		return StrategyExponential, nil
	case "kalman":
		return StrategyKalman, nil
	case "kalman2d":
		return StrategyKalman2D, nil
	}
	return StrategyNone, fmt.Errorf("unknown smoothing strategy %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
