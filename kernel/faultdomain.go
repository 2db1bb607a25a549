package kernel

import "strings"

// DefaultFaultDomain is used when FaultDomains is constructed with no names.
const DefaultFaultDomain = "default"

// FaultDomains classifies event descriptors into named domains.
// The first domain is the fallback. Matching is first-match-wins in
// declaration order, so callers list domains from most to least specific.
// The zero value behaves like NewFaultDomains().
type FaultDomains struct {
	domains []string
}

func (f *FaultDomains) names() []string {
	if len(f.domains) == 0 {
		return []string{DefaultFaultDomain}
	}
	return f.domains
}

// NewFaultDomains creates a classifier. An empty list yields a single
// DefaultFaultDomain. Duplicate names are kept; only the first can ever match.
func NewFaultDomains(domains ...string) *FaultDomains {
	if len(domains) == 0 {
		return &FaultDomains{domains: []string{DefaultFaultDomain}}
	}
	return &FaultDomains{domains: append([]string(nil), domains...)}
}

// Classify returns the first domain whose name is a substring of event,
// or the default domain when none match. Never fails.
func (f *FaultDomains) Classify(event string) string {
	names := f.names()
	for _, d := range names {
		if strings.Contains(event, d) {
			return d
		}
	}
	return names[0]
}

// Default returns the fallback domain.
func (f *FaultDomains) Default() string {
	return f.names()[0]
}

// Domains returns a copy of the configured domains in declaration order.
func (f *FaultDomains) Domains() []string {
	return append([]string(nil), f.names()...)
}
