package kernel

import (
	"fmt"
	"math"
)

// Built-in generators. All are pure in the tick.

// Constant always returns v.
func Constant(v float64) Generator {
	return Infallible(func(int64) float64 { return v })
}

// Linear returns offset + slope*tick.
func Linear(slope, offset float64) Generator {
	return Infallible(func(tick int64) float64 {
		return offset + slope*float64(tick)
	})
}

// Sine returns offset + amplitude*sin(2π·tick/period).
// Panics if period <= 0.
func Sine(amplitude, period, offset float64) Generator {
	if period <= 0 {
		panic(fmt.Sprintf("Sine: period must be > 0, got %v", period))
	}
	return Infallible(func(tick int64) float64 {
		return offset + amplitude*math.Sin(2*math.Pi*float64(tick)/period)
	})
}

// Square alternates between high and low every half period.
// Panics if period < 2.
func Square(high, low float64, period int64) Generator {
	if period < 2 {
		panic(fmt.Sprintf("Square: period must be >= 2, got %d", period))
	}
	return Infallible(func(tick int64) float64 {
		if mod(tick, period) < period/2 {
			return high
		}
		return low
	})
}

// Sawtooth ramps from offset to offset+amplitude over each period.
// Panics if period < 1.
func Sawtooth(amplitude float64, period int64, offset float64) Generator {
	if period < 1 {
		panic(fmt.Sprintf("Sawtooth: period must be >= 1, got %d", period))
	}
	return Infallible(func(tick int64) float64 {
		return offset + amplitude*float64(mod(tick, period))/float64(period)
	})
}

// Noise returns offset + amplitude*u where u ∈ [-1, 1) is derived from
// (seed, tick) alone. Reading the same tick twice gives the same value.
func Noise(seed int64, amplitude, offset float64) Generator {
	return Infallible(func(tick int64) float64 {
		return offset + amplitude*(2*UnitFloat(seed, tick)-1)
	})
}

// Sequence replays a finite table: tick t yields values[t]. Ticks outside the
// table fail, which surfaces as an EvaluationError through Sensor.Read.
func Sequence(values []float64) Generator {
	table := append([]float64(nil), values...)
	return GeneratorFunc(func(tick int64) (float64, error) {
		if tick < 0 || tick >= int64(len(table)) {
			return 0, fmt.Errorf("tick %d outside sequence of length %d", tick, len(table))
		}
		return table[tick], nil
	})
}

// mod is a non-negative modulo.
func mod(a, n int64) int64 {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
