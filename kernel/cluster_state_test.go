package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterState_Scenario_AddDescribeRemove(t *testing.T) {
	// GIVEN an empty cluster
	c := NewClusterState()

	// WHEN n2 then n1 join
	c.AddNode("n2", 95)
	c.AddNode("n1", 90)

	// THEN Describe lists them by ascending id
	assert.Equal(t, []NodeDescriptor{{"n1", 90}, {"n2", 95}}, c.Describe())

	// WHEN n1 leaves
	c.RemoveNode("n1")

	// THEN only n2 remains
	assert.Equal(t, []NodeDescriptor{{"n2", 95}}, c.Describe())
}

func TestClusterState_Describe_SortedRegardlessOfInsertionOrder(t *testing.T) {
	orders := [][]string{
		{"a", "b", "c", "d"},
		{"d", "c", "b", "a"},
		{"c", "a", "d", "b"},
	}
	for _, order := range orders {
		c := NewClusterState()
		for _, id := range order {
			c.AddNodeDefault(id)
		}
		got := c.Describe()
		for i := 1; i < len(got); i++ {
			if got[i-1].NodeID >= got[i].NodeID {
				t.Errorf("insertion order %v: Describe not ascending: %v", order, got)
			}
		}
	}
}

func TestClusterState_ReAdd_OverwritesTrust_NoDuplicate(t *testing.T) {
	c := NewClusterState()
	c.AddNode("n1", 10)
	c.AddNode("n1", 55)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []NodeDescriptor{{"n1", 55}}, c.Describe())
}

func TestClusterState_RemoveAbsent_IsNoOp(t *testing.T) {
	c := NewClusterState()
	c.AddNode("n1", 1)

	c.RemoveNode("ghost")
	c.RemoveNode("ghost")

	assert.Equal(t, []NodeDescriptor{{"n1", 1}}, c.Describe())
}

func TestClusterState_RemoveTwice_IsIdempotent(t *testing.T) {
	c := NewClusterState()
	c.AddNode("n1", 1)
	c.RemoveNode("n1")
	c.RemoveNode("n1")
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Describe())
}

func TestClusterState_AddNodeDefault_Trust100(t *testing.T) {
	c := NewClusterState()
	c.AddNodeDefault("n1")
	n, ok := c.Get("n1")
	assert.True(t, ok)
	assert.Equal(t, DefaultTrust, n.Trust)
	assert.Equal(t, 100, n.Trust)
}

func TestClusterState_NodeIDs_Sorted(t *testing.T) {
	c := NewClusterState()
	c.AddNodeDefault("b")
	c.AddNodeDefault("a")
	assert.Equal(t, []string{"a", "b"}, c.NodeIDs())
}

func TestClusterState_Describe_ReturnsFreshSlice(t *testing.T) {
	c := NewClusterState()
	c.AddNode("n1", 1)
	d := c.Describe()
	d[0].Trust = 999
	n, _ := c.Get("n1")
	assert.Equal(t, 1, n.Trust)
}

func TestClusterState_ZeroValue_Usable(t *testing.T) {
	// GIVEN a cluster declared without the constructor
	var c ClusterState

	// THEN reads and removals work on the empty registry
	assert.Empty(t, c.Describe())
	c.RemoveNode("ghost")

	// AND the first join allocates the table
	c.AddNode("n1", 7)
	assert.Equal(t, []NodeDescriptor{{"n1", 7}}, c.Describe())
}
