package kernel

import (
	"errors"
	"fmt"
)

// Generator computes a sensor value from a tick. Implementations must be pure:
// the same tick always yields the same value with no caller-visible side effects.
type Generator interface {
	Generate(tick int64) (float64, error)
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(tick int64) (float64, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(tick int64) (float64, error) {
	return f(tick)
}

// Infallible adapts a generator that cannot fail.
func Infallible(f func(tick int64) float64) Generator {
	return GeneratorFunc(func(tick int64) (float64, error) {
		return f(tick), nil
	})
}

var errNilGenerator = errors.New("nil generator")

// Sensor pairs a name with a generator. It holds no state.
type Sensor struct {
	Name      string
	Generator Generator
}

// NewSensor creates a sensor.
func NewSensor(name string, gen Generator) Sensor {
	return Sensor{Name: name, Generator: gen}
}

// Read evaluates the generator at tick. Generator errors and panics come back
// as *EvaluationError.
func (s Sensor) Read(tick int64) (value float64, err error) {
	if s.Generator == nil {
		return 0, &EvaluationError{Sensor: s.Name, Tick: tick, Err: errNilGenerator}
	}
	defer func() {
		if r := recover(); r != nil {
			value = 0
			err = &EvaluationError{Sensor: s.Name, Tick: tick, Err: fmt.Errorf("generator panicked: %v", r)}
		}
	}()
	v, genErr := s.Generator.Generate(tick)
	if genErr != nil {
		return 0, &EvaluationError{Sensor: s.Name, Tick: tick, Err: genErr}
	}
	return v, nil
}

// SensorBundle reads every sensor at tick and returns name → value.
// Sensors are evaluated in slice order; when two share a name the later one
// wins. The first failure aborts the bundle and no partial map is returned.
func SensorBundle(sensors []Sensor, tick int64) (map[string]float64, error) {
	out := make(map[string]float64, len(sensors))
	for _, s := range sensors {
		v, err := s.Read(tick)
		if err != nil {
			return nil, err
		}
		out[s.Name] = v
	}
	return out, nil
}
