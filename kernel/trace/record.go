// Package trace provides per-tick run records produced by the simulation
// driver. This package has no dependencies on kernel/ or kernel/driver/; it
// stores pure data types.
package trace

// MembershipAction is a cluster membership change kind.
type MembershipAction string

const (
	ActionJoin  MembershipAction = "join"
	ActionLeave MembershipAction = "leave"
)

// MembershipRecord captures one join or leave applied at a tick.
type MembershipRecord struct {
	Tick   int64            `json:"tick"`
	NodeID string           `json:"node_id"`
	Action MembershipAction `json:"action"`
	Trust  int              `json:"trust,omitempty"`
}

// FaultRecord captures one classified fault event.
type FaultRecord struct {
	Tick   int64  `json:"tick"`
	Event  string `json:"event"`
	Domain string `json:"domain"`
}

// TickRecord is everything the driver observed at one tick, in the order it
// applied it: membership, faults, sensors, then the optional snapshot.
type TickRecord struct {
	Tick       int64              `json:"tick"`
	Membership []MembershipRecord `json:"membership,omitempty"`
	Faults     []FaultRecord      `json:"faults,omitempty"`
	Sensors    map[string]float64 `json:"sensors"`
	Members    []string           `json:"members"`
	// Snapshot fields are set only on ticks where a snapshot was persisted.
	SnapshotDigest string `json:"snapshot_digest,omitempty"`
	Checksum       uint64 `json:"checksum,omitempty"`
}
