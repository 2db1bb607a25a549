// Package driver runs a scenario against the kernel: it owns the clock, applies
// scheduled membership changes and faults, samples sensors, rebuilds the
// routing topology and persists snapshots to the block device. Everything it
// does is a function of the scenario and its seed.
package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/detkernel/kernel"
	"github.com/inference-sim/detkernel/kernel/loader"
	"github.com/inference-sim/detkernel/kernel/snapshot"
	"github.com/inference-sim/detkernel/kernel/trace"
)

// ErrHorizon is returned by Step once the clock has reached the scenario's
// tick horizon.
var ErrHorizon = errors.New("run reached its horizon")

// SnapshotSink receives every persisted snapshot. *archive.Archive satisfies it.
type SnapshotSink interface {
	Save(ctx context.Context, runID string, tick int64, digest string, data []byte) error
}

// Option configures a Driver.
type Option func(*settings)

type settings struct {
	sink       SnapshotSink
	traceLevel trace.TraceLevel
}

// WithSnapshotSink hands every persisted snapshot to sink as well.
func WithSnapshotSink(sink SnapshotSink) Option {
	return func(s *settings) { s.sink = sink }
}

// WithTraceLevel overrides the scenario's trace level.
func WithTraceLevel(level trace.TraceLevel) Option {
	return func(s *settings) { s.traceLevel = level }
}

// Result is the outcome of a run (or of the run so far).
type Result struct {
	RunID     string              `json:"run_id"`
	Seed      int64               `json:"seed"`
	FinalTick int64               `json:"final_tick"`
	Digest    string              `json:"digest"`   // digest of the latest snapshot
	Checksum  uint64              `json:"checksum"` // device checksum after the latest snapshot
	Members   []string            `json:"members"`
	Faults    map[string]int      `json:"faults"` // domain → classified faults
	Snapshots int                 `json:"snapshots"`
	Summary   *trace.TraceSummary `json:"summary"`
	Trace     *trace.RunTrace     `json:"-"`
}

// Driver advances one simulation. Not safe for concurrent use; Sweep gives
// each run its own Driver.
type Driver struct {
	sc       *Scenario
	runID    string
	clock    *kernel.LogicalClock
	device   *kernel.BlockDevice
	domains  *kernel.FaultDomains
	sensors  []kernel.Sensor
	cluster  *kernel.ClusterState
	events   *EventHeap
	trace    *trace.RunTrace
	sink     SnapshotSink
	faults   map[string]int
	ring     map[string]string
	star     []kernel.StarEdge
	digest   string
	checksum uint64
	shots    int
}

// NewDriver builds every kernel component the scenario describes. ld may be
// nil; otherwise its namespaces are available to sensor and fault domain
// references alongside the builtin table and the scenario's scripts, which
// live on a per-driver child so ld is never modified.
// Events scheduled at tick 0 are applied before NewDriver returns.
func NewDriver(sc *Scenario, ld *loader.Loader, opts ...Option) (*Driver, error) {
	defaulted := *sc
	defaulted.ApplyDefaults()
	sc = &defaulted
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	set := settings{traceLevel: trace.TraceLevel(sc.Trace)}
	for _, opt := range opts {
		opt(&set)
	}
	if err := inlineScripts(sc); err != nil {
		return nil, err
	}
	ld, err := scenarioLoader(ld, sc)
	if err != nil {
		return nil, err
	}

	runID, err := RunID(sc)
	if err != nil {
		return nil, err
	}
	device, err := kernel.NewBlockDevice(sc.Device.Blocks, sc.Device.BlockSize)
	if err != nil {
		return nil, err
	}
	domains := kernel.NewFaultDomains(sc.FaultDomains...)
	if sc.FaultDomainsRef != "" {
		if domains, err = ld.LoadDomains(sc.FaultDomainsRef); err != nil {
			return nil, err
		}
	}

	key := kernel.NewSimulationKey(sc.Seed)
	sensors := make([]kernel.Sensor, 0, len(sc.Sensors))
	for _, sn := range sc.Sensors {
		gen, err := buildGenerator(sn, key, ld)
		if err != nil {
			return nil, fmt.Errorf("sensor %s: %w", sn.Name, err)
		}
		sensors = append(sensors, kernel.NewSensor(sn.Name, gen))
	}

	d := &Driver{
		sc:      sc,
		runID:   runID,
		clock:   kernel.NewLogicalClock(),
		device:  device,
		domains: domains,
		sensors: sensors,
		cluster: kernel.NewClusterState(),
		events:  NewEventHeap(),
		trace:   trace.NewRunTrace(set.traceLevel),
		sink:    set.sink,
		faults:  make(map[string]int),
	}
	d.schedule()

	rec, err := d.apply(0)
	if err != nil {
		return nil, err
	}
	d.trace.Record(rec)
	return d, nil
}

// schedule queues every join, leave and fault in declaration order.
func (d *Driver) schedule() {
	for _, n := range d.sc.Nodes {
		trust := kernel.DefaultTrust
		if n.Trust != nil {
			trust = *n.Trust
		}
		d.events.Schedule(Event{Tick: n.JoinTick, Kind: EventJoin, Node: n.ID, Trust: trust})
		if n.LeaveTick != nil {
			d.events.Schedule(Event{Tick: *n.LeaveTick, Kind: EventLeave, Node: n.ID})
		}
	}
	for _, f := range d.sc.Faults {
		d.events.Schedule(Event{Tick: f.Tick, Kind: EventFault, Fault: f.Event})
	}
}

// RunID derives the run identifier from the scenario content and seed: a
// SHA-1 (version 5) UUID, so reruns archive under the same id. Script files
// contribute their source, not their path.
func RunID(sc *Scenario) (string, error) {
	cp := *sc
	if err := inlineScripts(&cp); err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	data, err := snapshot.Canonicalize(&cp)
	if err != nil {
		return "", fmt.Errorf("run id: %w", err)
	}
	name := fmt.Sprintf("detkernel:%s:%d", snapshot.Digest(data), sc.Seed)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String(), nil
}

// RunID returns the run identifier.
func (d *Driver) RunID() string { return d.runID }

// Now returns the current tick.
func (d *Driver) Now() int64 { return d.clock.Now() }

// Done reports whether the clock has reached the horizon.
func (d *Driver) Done() bool { return d.clock.Now() >= d.sc.Ticks }

// Cluster exposes the membership table for inspection.
func (d *Driver) Cluster() *kernel.ClusterState { return d.cluster }

// Device exposes the block device for inspection.
func (d *Driver) Device() *kernel.BlockDevice { return d.device }

// Step advances the clock by the scenario step (clipped to the horizon),
// applies every event now due, samples sensors and persists a snapshot when
// the clock crosses a snapshot_every boundary or reaches the horizon.
func (d *Driver) Step(ctx context.Context) (trace.TickRecord, error) {
	if err := ctx.Err(); err != nil {
		return trace.TickRecord{}, err
	}
	if d.Done() {
		return trace.TickRecord{}, ErrHorizon
	}
	prev := d.clock.Now()
	step := d.sc.Step
	if remaining := d.sc.Ticks - prev; step > remaining {
		step = remaining
	}
	now, err := d.clock.Advance(step)
	if err != nil {
		return trace.TickRecord{}, err
	}

	rec, err := d.apply(now)
	if err != nil {
		return trace.TickRecord{}, err
	}
	every := d.sc.SnapshotEvery
	if (every > 0 && now/every > prev/every) || d.Done() {
		if err := d.persist(ctx, &rec); err != nil {
			return trace.TickRecord{}, err
		}
	}
	d.trace.Record(rec)
	return rec, nil
}

// apply processes events due at or before now, then samples sensors.
func (d *Driver) apply(now int64) (trace.TickRecord, error) {
	rec := trace.TickRecord{Tick: now}
	membershipChanged := false
	for _, ev := range d.events.PopDue(now) {
		switch ev.Kind {
		case EventJoin:
			d.cluster.AddNode(ev.Node, ev.Trust)
			rec.Membership = append(rec.Membership, trace.MembershipRecord{
				Tick: now, NodeID: ev.Node, Action: trace.ActionJoin, Trust: ev.Trust,
			})
			membershipChanged = true
		case EventLeave:
			d.cluster.RemoveNode(ev.Node)
			rec.Membership = append(rec.Membership, trace.MembershipRecord{
				Tick: now, NodeID: ev.Node, Action: trace.ActionLeave,
			})
			membershipChanged = true
		case EventFault:
			domain := d.domains.Classify(ev.Fault)
			d.faults[domain]++
			rec.Faults = append(rec.Faults, trace.FaultRecord{Tick: now, Event: ev.Fault, Domain: domain})
			logrus.Infof("[tick %07d] fault %q classified as %s", now, ev.Fault, domain)
		}
	}
	if membershipChanged || now == 0 {
		d.rebuildTopology(now)
	}

	values, err := kernel.SensorBundle(d.sensors, now)
	if err != nil {
		logrus.Warnf("[tick %07d] sensor sampling failed: %v", now, err)
		return trace.TickRecord{}, err
	}
	rec.Sensors = values
	rec.Members = d.cluster.NodeIDs()
	logrus.Debugf("[tick %07d] %d members, %d sensors", now, len(rec.Members), len(values))
	return rec, nil
}

// rebuildTopology recomputes the routing topology over current members.
func (d *Driver) rebuildTopology(now int64) {
	members := d.cluster.NodeIDs()
	d.ring, d.star = nil, nil
	if len(members) == 0 {
		logrus.Debugf("[tick %07d] no members, topology cleared", now)
		return
	}
	switch d.sc.Topology.Kind {
	case "star":
		center := d.sc.Topology.Center
		if center == "" {
			center = members[0]
		}
		leaves := make([]string, 0, len(members))
		for _, id := range members {
			if id != center {
				leaves = append(leaves, id)
			}
		}
		d.star = kernel.StarTopology(center, leaves)
	default:
		// members is non-empty, so the ring cannot fail.
		d.ring, _ = kernel.RingTopology(members)
	}
}

// snapshotAt captures the current state.
func (d *Driver) snapshotAt(now int64, sensors map[string]float64) *snapshot.Snapshot {
	faults := make(map[string]int, len(d.faults))
	for k, v := range d.faults {
		faults[k] = v
	}
	return &snapshot.Snapshot{
		Tick:    now,
		Nodes:   d.cluster.Describe(),
		Sensors: sensors,
		Ring:    d.ring,
		Star:    d.star,
		Faults:  faults,
	}
}

// persist frames the snapshot onto the device, records digest and checksum on
// rec and forwards the snapshot to the sink.
func (d *Driver) persist(ctx context.Context, rec *trace.TickRecord) error {
	data, err := d.snapshotAt(rec.Tick, rec.Sensors).Canonical()
	if err != nil {
		return err
	}
	if err := snapshot.WriteFrame(d.device, data); err != nil {
		logrus.Warnf("[tick %07d] snapshot rejected: %v", rec.Tick, err)
		return err
	}
	d.digest = snapshot.Digest(data)
	d.checksum = d.device.Checksum()
	d.shots++
	rec.SnapshotDigest = d.digest
	rec.Checksum = d.checksum
	logrus.Debugf("[tick %07d] snapshot %s (%d bytes, checksum %d)", rec.Tick, d.digest[:12], len(data), d.checksum)

	if d.sink != nil {
		if err := d.sink.Save(ctx, d.runID, rec.Tick, d.digest, data); err != nil {
			return fmt.Errorf("snapshot sink: %w", err)
		}
	}
	return nil
}

// Run steps until the horizon and returns the result.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	logrus.Infof("[tick %07d] run %s started (seed %d, horizon %d)", d.clock.Now(), d.runID, d.sc.Seed, d.sc.Ticks)
	for !d.Done() {
		if _, err := d.Step(ctx); err != nil {
			return nil, err
		}
	}
	res := d.Result()
	logrus.Infof("[tick %07d] run %s finished: digest %s", d.clock.Now(), d.runID, res.Digest)
	return res, nil
}

// Result reports the state so far. Digest and Checksum are empty/zero until
// the first snapshot.
func (d *Driver) Result() *Result {
	faults := make(map[string]int, len(d.faults))
	for k, v := range d.faults {
		faults[k] = v
	}
	return &Result{
		RunID:     d.runID,
		Seed:      d.sc.Seed,
		FinalTick: d.clock.Now(),
		Digest:    d.digest,
		Checksum:  d.checksum,
		Members:   d.cluster.NodeIDs(),
		Faults:    faults,
		Snapshots: d.shots,
		Summary:   trace.Summarize(d.trace),
		Trace:     d.trace,
	}
}

// sortResults orders results by seed, keeping input order for equal seeds.
func sortResults(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Seed < results[j].Seed })
}
