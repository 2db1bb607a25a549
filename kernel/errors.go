package kernel

import (
	"errors"
	"fmt"
)

// Sentinel errors for the kernel's failure taxonomy. Typed errors below match
// these through errors.Is, so callers can branch on category without caring
// about the concrete type.
var (
	// ErrInvalidArgument: a value outside the documented domain
	// (non-positive clock step, empty ring node set, bad geometry).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfRange: a block index outside the device geometry.
	ErrOutOfRange = errors.New("out of range")

	// ErrSizeMismatch: payload length differs from the device block size.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrEvaluation: a pluggable generator failed when invoked.
	ErrEvaluation = errors.New("evaluation failed")

	// ErrResolution: a capability reference could not be resolved.
	ErrResolution = errors.New("resolution failed")
)

// OutOfRangeError reports a block index outside [0, Blocks).
type OutOfRangeError struct {
	Index  int
	Blocks int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("block index %d out of range [0, %d)", e.Index, e.Blocks)
}

// Is matches ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// SizeMismatchError reports a payload whose length is not the block size.
type SizeMismatchError struct {
	Index int
	Got   int
	Want  int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("block %d: payload length %d, block size %d", e.Index, e.Got, e.Want)
}

// Is matches ErrSizeMismatch.
func (e *SizeMismatchError) Is(target error) bool { return target == ErrSizeMismatch }

// EvaluationError wraps a generator failure with the sensor and tick that
// triggered it.
type EvaluationError struct {
	Sensor string
	Tick   int64
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("sensor %q at tick %d: %v", e.Sensor, e.Tick, e.Err)
}

// Is matches ErrEvaluation.
func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluation }

// Unwrap exposes the generator's own error.
func (e *EvaluationError) Unwrap() error { return e.Err }

// ResolutionError reports a capability reference the loader could not resolve.
type ResolutionError struct {
	Reference string
	Reason    string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %q: %s", e.Reference, e.Reason)
}

// Is matches ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
