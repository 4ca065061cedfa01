package smoothing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"none", StrategyNone, false},
		{"off", StrategyNone, false},
		{"EMA", StrategyExponential, false},
		{"exponential", StrategyExponential, false},
		{" kalman ", StrategyKalman, false},
		{"kalman2d", StrategyKalman2D, false},
		{"particle", StrategyNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrategy_NextCycles(t *testing.T) {
	s := StrategyNone
	seen := map[Strategy]bool{}
	for i := 0; i < 4; i++ {
		seen[s] = true
		s = s.Next()
	}
	assert.Equal(t, StrategyNone, s)
	assert.Len(t, seen, 4)
}

func TestStrategy_JSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Strategy Strategy `json:"strategy"`
	}

	data, err := json.Marshal(wrapper{Strategy: StrategyKalman})
	require.NoError(t, err)
	assert.JSONEq(t, `{"strategy":"kalman"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"strategy":"exponential"}`), &w))
	assert.Equal(t, StrategyExponential, w.Strategy)

	assert.Error(t, json.Unmarshal([]byte(`{"strategy":"bogus"}`), &w))
}

func TestNew(t *testing.T) {
	p := DefaultParams()

	assert.IsType(t, &Passthrough{}, New(StrategyNone, p))
	assert.IsType(t, &Exponential{}, New(StrategyExponential, p))
	assert.IsType(t, &Kalman{}, New(StrategyKalman, p))
	assert.IsType(t, &Kalman{}, New(StrategyKalman2D, p))
	assert.Equal(t, "Strategy(9)", Strategy(9).String())
}

func TestPlanar_HoldsStationaryPoint(t *testing.T) {
	pl := NewPlanar(0, 0)
	require.False(t, pl.Initialized())

	var x, y float64
	for i := 0; i < 30; i++ {
		var err error
		x, y, err = pl.Update(960, 540)
		require.NoError(t, err)
	}

	assert.True(t, pl.Initialized())
	assert.InDelta(t, 960, x, 1e-6)
	assert.InDelta(t, 540, y, 1e-6)

	pl.Reset()
	assert.False(t, pl.Initialized())
}
