package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/detkernel/kernel/trace"
)

// Default device geometry when a scenario leaves it unset.
const (
	DefaultDeviceBlocks    = 16
	DefaultDeviceBlockSize = 256
)

// Scenario is a complete, replayable simulation description.
// Loaded from YAML via LoadScenario(path).
type Scenario struct {
	Seed int64 `yaml:"seed" json:"seed"`

	// Ticks is the horizon; the run stops once the clock reaches it.
	Ticks int64 `yaml:"ticks" json:"ticks"`

	// Step is the number of clock ticks per driver step (default 1).
	Step int64 `yaml:"step,omitempty" json:"step"`

	// SnapshotEvery persists a snapshot each time the clock crosses a
	// multiple of it. 0 = final snapshot only.
	SnapshotEvery int64 `yaml:"snapshot_every,omitempty" json:"snapshot_every"`

	Device          DeviceSpec   `yaml:"device" json:"device"`
	FaultDomains    []string     `yaml:"fault_domains,omitempty" json:"fault_domains,omitempty"`
	FaultDomainsRef string       `yaml:"fault_domains_ref,omitempty" json:"fault_domains_ref,omitempty"`
	Topology        TopologySpec `yaml:"topology" json:"topology"`
	Nodes           []NodeSpec   `yaml:"nodes" json:"nodes"`
	Sensors         []SensorSpec `yaml:"sensors" json:"sensors"`
	Faults          []FaultSpec  `yaml:"faults,omitempty" json:"faults,omitempty"`
	Scripts         []ScriptSpec `yaml:"scripts,omitempty" json:"scripts,omitempty"`
	Trace           string       `yaml:"trace,omitempty" json:"trace,omitempty"`
}

// DeviceSpec sets the block device geometry.
type DeviceSpec struct {
	Blocks    int `yaml:"blocks" json:"blocks"`
	BlockSize int `yaml:"block_size" json:"block_size"`
}

// TopologySpec selects ring or star routing topology over current members.
// An empty Center for a star means "lowest member id".
type TopologySpec struct {
	Kind   string `yaml:"kind" json:"kind"`
	Center string `yaml:"center,omitempty" json:"center,omitempty"`
}

// NodeSpec schedules a node's membership. Nil Trust means kernel.DefaultTrust;
// nil LeaveTick means the node stays to the end.
type NodeSpec struct {
	ID        string `yaml:"id" json:"id"`
	Trust     *int   `yaml:"trust,omitempty" json:"trust,omitempty"`
	JoinTick  int64  `yaml:"join_tick,omitempty" json:"join_tick"`
	LeaveTick *int64 `yaml:"leave_tick,omitempty" json:"leave_tick,omitempty"`
}

// SensorSpec declares a sensor either by built-in Kind or by loader Ref.
type SensorSpec struct {
	Name   string             `yaml:"name" json:"name"`
	Kind   string             `yaml:"kind,omitempty" json:"kind,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Values []float64          `yaml:"values,omitempty" json:"values,omitempty"` // sequence kind only
	Ref    string             `yaml:"ref,omitempty" json:"ref,omitempty"`
}

// FaultSpec injects a fault event descriptor at a tick.
type FaultSpec struct {
	Tick  int64  `yaml:"tick" json:"tick"`
	Event string `yaml:"event" json:"event"`
}

// ScriptSpec registers a yaegi-interpreted Go source file (or inline source)
// as a loader namespace.
type ScriptSpec struct {
	Namespace string `yaml:"namespace" json:"namespace"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
	Source    string `yaml:"source,omitempty" json:"source,omitempty"`
}

// requiredParams lists the params each built-in sensor kind must set.
var requiredParams = map[string][]string{
	"constant": {"value"},
	"linear":   {"slope", "offset"},
	"sine":     {"amplitude", "period", "offset"},
	"square":   {"high", "low", "period"},
	"sawtooth": {"amplitude", "period", "offset"},
	"noise":    {"amplitude", "offset"},
	"sequence": {},
}

// ValidTopologies is the set of recognized topology kinds.
var ValidTopologies = map[string]bool{"": true, "ring": true, "star": true}

// LoadScenario reads and parses a YAML scenario with strict field checking
// (typos in field names are errors), applies defaults and validates.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	resolveScriptPaths(sc, filepath.Dir(path))
	return sc, nil
}

// ParseScenario is LoadScenario for in-memory YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	sc.ApplyDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// ApplyDefaults fills zero-valued optional fields.
func (s *Scenario) ApplyDefaults() {
	if s.Step == 0 {
		s.Step = 1
	}
	if s.Device.Blocks == 0 {
		s.Device.Blocks = DefaultDeviceBlocks
	}
	if s.Device.BlockSize == 0 {
		s.Device.BlockSize = DefaultDeviceBlockSize
	}
	if s.Topology.Kind == "" {
		s.Topology.Kind = "ring"
	}
}

// Validate checks ranges, references and cross-field rules.
func (s *Scenario) Validate() error {
	if s.Ticks < 1 {
		return fmt.Errorf("ticks must be >= 1, got %d", s.Ticks)
	}
	if s.Step < 1 {
		return fmt.Errorf("step must be >= 1, got %d", s.Step)
	}
	if s.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must be non-negative, got %d", s.SnapshotEvery)
	}
	if s.Device.Blocks < 1 || s.Device.BlockSize < 1 {
		return fmt.Errorf("device geometry must be positive, got %d blocks of %d bytes", s.Device.Blocks, s.Device.BlockSize)
	}
	if len(s.FaultDomains) > 0 && s.FaultDomainsRef != "" {
		return fmt.Errorf("fault_domains and fault_domains_ref are mutually exclusive")
	}
	if !ValidTopologies[s.Topology.Kind] {
		return fmt.Errorf("unknown topology %q", s.Topology.Kind)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q", s.Trace)
	}

	seen := make(map[string]bool, len(s.Nodes))
	for i, n := range s.Nodes {
		if n.ID == "" {
			return fmt.Errorf("nodes[%d]: id is required", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("nodes[%d]: duplicate id %q", i, n.ID)
		}
		seen[n.ID] = true
		if n.JoinTick < 0 {
			return fmt.Errorf("node %s: join_tick must be non-negative, got %d", n.ID, n.JoinTick)
		}
		if n.LeaveTick != nil && *n.LeaveTick <= n.JoinTick {
			return fmt.Errorf("node %s: leave_tick %d must be after join_tick %d", n.ID, *n.LeaveTick, n.JoinTick)
		}
	}

	for i, sn := range s.Sensors {
		if sn.Name == "" {
			return fmt.Errorf("sensors[%d]: name is required", i)
		}
		if (sn.Kind == "") == (sn.Ref == "") {
			return fmt.Errorf("sensor %s: exactly one of kind or ref is required", sn.Name)
		}
		if sn.Ref != "" {
			continue
		}
		required, ok := requiredParams[sn.Kind]
		if !ok {
			return fmt.Errorf("sensor %s: unknown kind %q", sn.Name, sn.Kind)
		}
		for _, p := range required {
			if _, set := sn.Params[p]; !set {
				return fmt.Errorf("sensor %s: %s requires param %q", sn.Name, sn.Kind, p)
			}
		}
		if sn.Kind == "sequence" && len(sn.Values) == 0 {
			return fmt.Errorf("sensor %s: sequence requires values", sn.Name)
		}
		if err := checkPeriod(sn); err != nil {
			return err
		}
	}

	for i, f := range s.Faults {
		if f.Tick < 0 {
			return fmt.Errorf("faults[%d]: tick must be non-negative, got %d", i, f.Tick)
		}
		if f.Event == "" {
			return fmt.Errorf("faults[%d]: event is required", i)
		}
	}

	namespaces := make(map[string]bool, len(s.Scripts))
	for i, sc := range s.Scripts {
		if sc.Namespace == "" {
			return fmt.Errorf("scripts[%d]: namespace is required", i)
		}
		if sc.Namespace == BuiltinNamespace || namespaces[sc.Namespace] {
			return fmt.Errorf("scripts[%d]: namespace %q already in use", i, sc.Namespace)
		}
		namespaces[sc.Namespace] = true
		if (sc.Path == "") == (sc.Source == "") {
			return fmt.Errorf("script %s: exactly one of path or source is required", sc.Namespace)
		}
	}
	return nil
}

func checkPeriod(sn SensorSpec) error {
	period := sn.Params["period"]
	switch sn.Kind {
	case "sine":
		if period <= 0 {
			return fmt.Errorf("sensor %s: period must be > 0, got %v", sn.Name, period)
		}
	case "square":
		if period < 2 || period != float64(int64(period)) {
			return fmt.Errorf("sensor %s: period must be an integer >= 2, got %v", sn.Name, period)
		}
	case "sawtooth":
		if period < 1 || period != float64(int64(period)) {
			return fmt.Errorf("sensor %s: period must be an integer >= 1, got %v", sn.Name, period)
		}
	}
	return nil
}

// WithSeed returns a copy of s with Seed replaced. Slices are shared; the
// driver never mutates a scenario.
func (s *Scenario) WithSeed(seed int64) *Scenario {
	cp := *s
	cp.Seed = seed
	return &cp
}
