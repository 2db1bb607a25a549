// Package kernel provides the deterministic systems kernel: a small set of
// independent, in-memory components that model time, storage, sensors and
// cluster membership so control-plane logic can be exercised without wall
// clocks, real I/O or nondeterministic scheduling.
//
// # Reading Guide
//
// The components are leaf-first and never call each other:
//   - clock.go: LogicalClock, the only notion of time (integer ticks)
//   - sensor.go, generators.go: Sensor and the Generator capability
//   - storage.go: BlockDevice, a fixed-geometry byte-block store
//   - faultdomain.go: FaultDomains, first-match-wins event classification
//   - topology.go: RingTopology and StarTopology constructors
//   - cluster_state.go: ClusterState, the node registry
//
// Composition lives outside this package:
//   - kernel/loader/: resolves "ns:attr" references to extension objects
//   - kernel/driver/: the tick loop that sequences every component
//   - kernel/snapshot/: canonical export and block-device framing
//   - kernel/trace/: per-tick records produced by the driver
//   - kernel/host/: serialization for multi-goroutine hosts
//   - kernel/archive/: SQLite snapshot archive
//
// # Determinism
//
// Given the same sequence of calls, every component produces bit-for-bit
// identical results. Nothing here reads the wall clock, touches the
// filesystem, or spawns goroutines.
//
// Thread-safety: NOT thread-safe. ClusterState and BlockDevice hold mutable
// maps without locks. Hosts that share an instance across goroutines must
// serialize access (see kernel/host.Actor).
package kernel
