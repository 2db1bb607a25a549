package kernel

import "sort"

// StarEdge is one (center, leaf) pair of a star topology.
type StarEdge struct {
	Center string `json:"center"`
	Leaf   string `json:"leaf"`
}

// RingTopology sorts node ids ascending and links each to its successor,
// wrapping the last to the first. Duplicate ids are collapsed. A single node
// maps to itself. Fails with ErrInvalidArgument on empty input.
func RingTopology(nodes []string) (map[string]string, error) {
	ids := sortedUnique(nodes)
	if len(ids) == 0 {
		return nil, invalidArgument("ring topology needs at least one node")
	}
	ring := make(map[string]string, len(ids))
	for i, id := range ids {
		ring[id] = ids[(i+1)%len(ids)]
	}
	return ring, nil
}

// RingNeighbors returns the predecessor and successor of id in ring.
// ok is false if id is not on the ring.
func RingNeighbors(ring map[string]string, id string) (prev, next string, ok bool) {
	next, ok = ring[id]
	if !ok {
		return "", "", false
	}
	for from, to := range ring {
		if to == id {
			return from, next, true
		}
	}
	return "", next, true
}

// StarTopology returns (center, leaf) pairs with leaves sorted ascending.
// The center is not checked against the leaves; a leaf equal to the center
// yields a self-edge.
func StarTopology(center string, leaves []string) []StarEdge {
	sorted := append([]string(nil), leaves...)
	sort.Strings(sorted)
	edges := make([]StarEdge, 0, len(sorted))
	for _, leaf := range sorted {
		edges = append(edges, StarEdge{Center: center, Leaf: leaf})
	}
	return edges
}

func sortedUnique(ids []string) []string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := sorted[:0]
	for i, id := range sorted {
		if i > 0 && id == sorted[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
