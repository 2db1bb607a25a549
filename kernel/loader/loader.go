// Package loader resolves capability references ("ns" or "ns:attr") to live
// extension objects. It is the kernel's only pluggable extension point: custom
// sensors and fault-domain tables are wired in by reference string, so the
// kernel itself carries no compile-time dependency on extension code.
//
// A Loader owns its namespaces. There is no process-wide registry; two
// simulations in one process each construct their own Loader.
package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/detkernel/kernel"
)

// Namespace is a resolvable set of named attributes.
type Namespace interface {
	Lookup(attr string) (any, bool)
	Attributes() []string
}

// Table is a map-backed Namespace. Values that are themselves Tables (or any
// Namespace) can be walked with dotted attribute paths.
type Table map[string]any

// Lookup implements Namespace.
func (t Table) Lookup(attr string) (any, bool) {
	v, ok := t[attr]
	return v, ok
}

// Attributes implements Namespace.
func (t Table) Attributes() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader maps namespace names to Namespaces.
//
// Thread-safety: NOT thread-safe. Register everything before handing the
// Loader to concurrent readers.
type Loader struct {
	namespaces map[string]Namespace
	parent     *Loader
}

// New creates an empty Loader.
func New() *Loader {
	return &Loader{namespaces: make(map[string]Namespace)}
}

// Child creates a Loader that resolves its own namespaces first and then
// parent's. Registering on the child never touches parent, and a name already
// bound in parent cannot be registered again. parent may be nil.
func Child(parent *Loader) *Loader {
	l := New()
	l.parent = parent
	return l
}

// namespace looks name up here, then through the parent chain.
func (l *Loader) namespace(name string) (Namespace, bool) {
	for cur := l; cur != nil; cur = cur.parent {
		if ns, ok := cur.namespaces[name]; ok {
			return ns, true
		}
	}
	return nil, false
}

// Register binds name to ns. Names must be non-empty, free of ':' and '.',
// and unique within the Loader.
func (l *Loader) Register(name string, ns Namespace) error {
	if name == "" {
		return fmt.Errorf("namespace name cannot be empty")
	}
	if strings.ContainsAny(name, ":.") {
		return fmt.Errorf("namespace name %q must not contain ':' or '.'", name)
	}
	if ns == nil {
		return fmt.Errorf("namespace %q is nil", name)
	}
	if _, exists := l.namespace(name); exists {
		return fmt.Errorf("namespace already registered: %s", name)
	}
	l.namespaces[name] = ns
	logrus.Debugf("loader: registered namespace %s (%d attributes)", name, len(ns.Attributes()))
	return nil
}

// Namespaces returns registered namespace names in ascending order,
// including those inherited from a parent.
func (l *Loader) Namespaces() []string {
	names := make([]string, 0, len(l.namespaces))
	for cur := l; cur != nil; cur = cur.parent {
		for name := range cur.namespaces {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load resolves ref. "ns" returns the Namespace itself; "ns:attr" returns the
// attribute; "ns:a.b" walks nested namespaces. Failures are
// *kernel.ResolutionError. Nothing is cached: every call resolves afresh.
func (l *Loader) Load(ref string) (any, error) {
	nsName, attrPath, hasAttr := strings.Cut(ref, ":")
	if nsName == "" {
		return nil, &kernel.ResolutionError{Reference: ref, Reason: "empty namespace"}
	}
	ns, ok := l.namespace(nsName)
	if !ok {
		return nil, &kernel.ResolutionError{Reference: ref, Reason: fmt.Sprintf("unknown namespace %q", nsName)}
	}
	if !hasAttr {
		logrus.Debugf("loader: resolved %s to namespace", ref)
		return ns, nil
	}
	if attrPath == "" {
		return nil, &kernel.ResolutionError{Reference: ref, Reason: "empty attribute"}
	}

	var current any = ns
	parts := strings.Split(attrPath, ".")
	for i, part := range parts {
		scope, ok := current.(Namespace)
		if !ok {
			return nil, &kernel.ResolutionError{
				Reference: ref,
				Reason:    fmt.Sprintf("%q is %T, not a namespace", strings.Join(parts[:i], "."), current),
			}
		}
		if part == "" {
			return nil, &kernel.ResolutionError{Reference: ref, Reason: "empty path segment"}
		}
		next, found := scope.Lookup(part)
		if !found {
			return nil, &kernel.ResolutionError{
				Reference: ref,
				Reason:    fmt.Sprintf("attribute %q not found", strings.Join(parts[:i+1], ".")),
			}
		}
		current = next
	}
	logrus.Debugf("loader: resolved %s to %T", ref, current)
	return current, nil
}
