package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFaultDomains_Classify(t *testing.T) {
	fd := NewFaultDomains("db", "net")
	tests := []struct {
		event string
		want  string
	}{
		{"net-timeout", "net"},
		{"db-lock", "db"},
		{"unknown-event", "db"},
		{"", "db"},
	}
	for _, tt := range tests {
		if got := fd.Classify(tt.event); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.event, got, tt.want)
		}
	}
}

func TestFaultDomains_FirstMatchWins_NotBestMatch(t *testing.T) {
	// "net" is listed before the more specific "network"; it wins anyway.
	fd := NewFaultDomains("default", "net", "network")
	assert.Equal(t, "net", fd.Classify("network-partition"))

	// Reordered most-specific first, the longer name wins.
	fd = NewFaultDomains("default", "network", "net")
	assert.Equal(t, "network", fd.Classify("network-partition"))
}

func TestFaultDomains_Empty_FallsBackToDefault(t *testing.T) {
	fd := NewFaultDomains()
	assert.Equal(t, DefaultFaultDomain, fd.Default())
	assert.Equal(t, DefaultFaultDomain, fd.Classify("anything"))
	assert.Equal(t, []string{DefaultFaultDomain}, fd.Domains())
}

func TestFaultDomains_DomainNameCollision_FirstDeclarationKept(t *testing.T) {
	fd := NewFaultDomains("core", "net", "net")
	assert.Equal(t, []string{"core", "net", "net"}, fd.Domains())
	assert.Equal(t, "net", fd.Classify("net-down"))
}

func TestFaultDomains_Domains_ReturnsCopy(t *testing.T) {
	input := []string{"a", "b"}
	fd := NewFaultDomains(input...)
	input[0] = "z"
	got := fd.Domains()
	got[1] = "y"
	assert.Equal(t, []string{"a", "b"}, fd.Domains())
}

func TestFaultDomains_ZeroValue_BehavesLikeEmpty(t *testing.T) {
	var fd FaultDomains
	assert.Equal(t, DefaultFaultDomain, fd.Default())
	assert.Equal(t, DefaultFaultDomain, fd.Classify("net-down"))
	assert.Equal(t, []string{DefaultFaultDomain}, fd.Domains())
}
