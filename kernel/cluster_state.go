package kernel

import (
	"sort"

	"github.com/sirupsen/logrus"
)

// DefaultTrust is the trust score assigned by AddNodeDefault.
const DefaultTrust = 100

// NodeDescriptor is one cluster member.
type NodeDescriptor struct {
	NodeID string `json:"node_id"`
	Trust  int    `json:"trust"`
}

// ClusterState is the registry of current members, keyed by node id. The
// zero value is an empty registry ready for use.
//
// Describe() order (ascending node id) is part of the contract: consumers
// rely on it for reproducible iteration.
//
// Thread-safety: NOT thread-safe. Single writer; the host serializes access.
type ClusterState struct {
	nodes map[string]NodeDescriptor
}

// NewClusterState creates an empty registry.
func NewClusterState() *ClusterState {
	return &ClusterState{nodes: make(map[string]NodeDescriptor)}
}

// AddNode inserts id, or overwrites its trust if already present.
func (c *ClusterState) AddNode(id string, trust int) {
	if prev, ok := c.nodes[id]; ok {
		logrus.Debugf("cluster: node %s trust %d -> %d", id, prev.Trust, trust)
	} else {
		logrus.Debugf("cluster: node %s joined (trust=%d)", id, trust)
	}
	if c.nodes == nil {
		c.nodes = make(map[string]NodeDescriptor)
	}
	c.nodes[id] = NodeDescriptor{NodeID: id, Trust: trust}
}

// AddNodeDefault inserts id with DefaultTrust.
func (c *ClusterState) AddNodeDefault(id string) {
	c.AddNode(id, DefaultTrust)
}

// RemoveNode deletes id. Removing an absent id is a no-op.
func (c *ClusterState) RemoveNode(id string) {
	if _, ok := c.nodes[id]; !ok {
		return
	}
	delete(c.nodes, id)
	logrus.Debugf("cluster: node %s left", id)
}

// Get returns the descriptor for id.
func (c *ClusterState) Get(id string) (NodeDescriptor, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

// Len returns the number of members.
func (c *ClusterState) Len() int {
	return len(c.nodes)
}

// Describe returns all members ordered by ascending node id.
func (c *ClusterState) Describe() []NodeDescriptor {
	out := make([]NodeDescriptor, 0, len(c.nodes))
	for _, n := range c.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NodeID < out[j].NodeID })
	return out
}

// NodeIDs returns member ids in ascending order.
func (c *ClusterState) NodeIDs() []string {
	ids := make([]string, 0, len(c.nodes))
	for id := range c.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
