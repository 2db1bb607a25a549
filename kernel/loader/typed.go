package loader

import (
	"fmt"

	"github.com/inference-sim/detkernel/kernel"
)

// LoadGenerator resolves ref and adapts the result to kernel.Generator.
func (l *Loader) LoadGenerator(ref string) (kernel.Generator, error) {
	v, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	return AsGenerator(ref, v)
}

// LoadDomains resolves ref and adapts the result to *kernel.FaultDomains.
func (l *Loader) LoadDomains(ref string) (*kernel.FaultDomains, error) {
	v, err := l.Load(ref)
	if err != nil {
		return nil, err
	}
	return AsDomains(ref, v)
}

// AsGenerator accepts anything callable with an integer tick that returns a
// float: kernel.Generator, func(int64) float64, func(int64) (float64, error)
// and func(int) float64. ref is only used for error reporting.
func AsGenerator(ref string, v any) (kernel.Generator, error) {
	switch g := v.(type) {
	case kernel.Generator:
		return g, nil
	case func(int64) (float64, error):
		return kernel.GeneratorFunc(g), nil
	case func(int64) float64:
		return kernel.Infallible(g), nil
	case func(int) float64:
		return kernel.Infallible(func(tick int64) float64 { return g(int(tick)) }), nil
	default:
		return nil, &kernel.ResolutionError{Reference: ref, Reason: fmt.Sprintf("%T is not a generator", v)}
	}
}

// AsDomains accepts *kernel.FaultDomains, []string or func() []string.
func AsDomains(ref string, v any) (*kernel.FaultDomains, error) {
	switch d := v.(type) {
	case *kernel.FaultDomains:
		return d, nil
	case []string:
		return kernel.NewFaultDomains(d...), nil
	case func() []string:
		return kernel.NewFaultDomains(d()...), nil
	default:
		return nil, &kernel.ResolutionError{Reference: ref, Reason: fmt.Sprintf("%T is not a fault-domain table", v)}
	}
}
