package driver

import (
	"fmt"
	"path/filepath"

	"github.com/inference-sim/detkernel/kernel"
	"github.com/inference-sim/detkernel/kernel/loader"
)

// BuiltinNamespace is registered on every driver's loader.
const BuiltinNamespace = "builtin"

// builtinNamespace returns the always-available capability table:
// fault domain presets under "domains" and stateless generators under
// "generators".
func builtinNamespace() loader.Table {
	return loader.Table{
		"domains": loader.Table{
			"datacenter": []string{"power", "cooling", "network", "storage"},
			"edge":       []string{"power", "uplink", "radio"},
			"none":       []string{},
		},
		"generators": loader.Table{
			"zero":      kernel.Constant(0),
			"one":       kernel.Constant(1),
			"unit_ramp": kernel.Linear(1, 0),
		},
	}
}

// scenarioLoader returns a child of parent holding the builtin table and
// every scenario script. parent itself is never modified.
func scenarioLoader(parent *loader.Loader, sc *Scenario) (*loader.Loader, error) {
	ld := loader.Child(parent)
	if err := ld.Register(BuiltinNamespace, builtinNamespace()); err != nil {
		return nil, err
	}
	for _, s := range sc.Scripts {
		ns, err := loader.NewScriptNamespace(s.Source)
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", s.Namespace, err)
		}
		if err := ld.Register(s.Namespace, ns); err != nil {
			return nil, err
		}
	}
	return ld, nil
}

// inlineScripts replaces every script path with the file's source, so the
// scenario identifies its scripts by content rather than by location. The
// caller's Scripts slice is not modified.
func inlineScripts(sc *Scenario) error {
	if len(sc.Scripts) == 0 {
		return nil
	}
	scripts := make([]ScriptSpec, len(sc.Scripts))
	for i, s := range sc.Scripts {
		if s.Path != "" {
			src, err := loader.ReadScript(s.Path)
			if err != nil {
				return fmt.Errorf("script %s: %w", s.Namespace, err)
			}
			s.Source, s.Path = src, ""
		}
		scripts[i] = s
	}
	sc.Scripts = scripts
	return nil
}

// buildGenerator turns a sensor declaration into a generator. Noise sensors
// draw from the sensor's own subsystem seed, so adding or reordering sensors
// never changes another sensor's values.
func buildGenerator(sn SensorSpec, key kernel.SimulationKey, ld *loader.Loader) (kernel.Generator, error) {
	if sn.Ref != "" {
		return ld.LoadGenerator(sn.Ref)
	}
	p := sn.Params
	switch sn.Kind {
	case "constant":
		return kernel.Constant(p["value"]), nil
	case "linear":
		return kernel.Linear(p["slope"], p["offset"]), nil
	case "sine":
		return kernel.Sine(p["amplitude"], p["period"], p["offset"]), nil
	case "square":
		return kernel.Square(p["high"], p["low"], int64(p["period"])), nil
	case "sawtooth":
		return kernel.Sawtooth(p["amplitude"], int64(p["period"]), p["offset"]), nil
	case "noise":
		seed := key.ForSubsystem(kernel.SubsystemSensor(sn.Name))
		return kernel.Noise(seed, p["amplitude"], p["offset"]), nil
	case "sequence":
		return kernel.Sequence(sn.Values), nil
	default:
		return nil, fmt.Errorf("sensor %s: unknown kind %q", sn.Name, sn.Kind)
	}
}

// resolveScriptPaths makes relative script paths relative to dir.
func resolveScriptPaths(sc *Scenario, dir string) {
	for i, s := range sc.Scripts {
		if s.Path != "" && !filepath.IsAbs(s.Path) {
			sc.Scripts[i].Path = filepath.Join(dir, s.Path)
		}
	}
}
