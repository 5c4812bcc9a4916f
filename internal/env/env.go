// Package env implements the metavariable binding environment used by the
// structural matcher: a mapping from metavariable name to the set of
// candidate tree nodes it has been bound to. Multiple bindings of the same
// metavariable collect alternative matched sites; the matcher is
// responsible for enforcing that they are all structurally equal
// (nonlinear unification).
package env

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Metavar is a metavariable's user-visible name, e.g. "x" for "$x".
type Metavar string

// nodeKey identifies a node by its position in the source buffer, standing
// in for node identity since the node type itself is not comparable. A
// parent whose only child spans the same bytes shares that child's key, so
// the two count as one binding; their source text is identical.
type nodeKey struct {
	start, end uint32
}

func keyOf(n *sitter.Node) nodeKey {
	return nodeKey{start: n.StartByte(), end: n.EndByte()}
}

// Env maps each bound metavariable to the set of nodes it has matched.
type Env struct {
	bindings map[Metavar]map[nodeKey]*sitter.Node
}

// New returns an empty environment.
func New() Env {
	return Env{bindings: make(map[Metavar]map[nodeKey]*sitter.Node)}
}

// Clone returns a deep copy so that a failed matching attempt never leaks
// bindings into the caller's environment.
func (e Env) Clone() Env {
	out := Env{bindings: make(map[Metavar]map[nodeKey]*sitter.Node, len(e.bindings))}
	for mvar, nodes := range e.bindings {
		cp := make(map[nodeKey]*sitter.Node, len(nodes))
		for k, n := range nodes {
			cp[k] = n
		}
		out.bindings[mvar] = cp
	}
	return out
}

// Insert records that candidate is one of the sites bound to mvar.
func (e Env) Insert(mvar Metavar, node *sitter.Node) {
	set, ok := e.bindings[mvar]
	if !ok {
		set = make(map[nodeKey]*sitter.Node)
		e.bindings[mvar] = set
	}
	set[keyOf(node)] = node
}

// Extend merges other's bindings into e, in place.
func (e Env) Extend(other Env) {
	for mvar, nodes := range other.bindings {
		set, ok := e.bindings[mvar]
		if !ok {
			set = make(map[nodeKey]*sitter.Node, len(nodes))
			e.bindings[mvar] = set
		}
		for k, n := range nodes {
			set[k] = n
		}
	}
}

// Get returns the bound nodes for mvar, or (nil, false) if unbound.
func (e Env) Get(mvar Metavar) ([]*sitter.Node, bool) {
	set, ok := e.bindings[mvar]
	if !ok {
		return nil, false
	}
	out := make([]*sitter.Node, 0, len(set))
	for _, n := range set {
		out = append(out, n)
	}
	return out, true
}

// Metavars returns the set of bound metavariable names.
func (e Env) Metavars() []Metavar {
	out := make([]Metavar, 0, len(e.bindings))
	for mvar := range e.bindings {
		out = append(out, mvar)
	}
	return out
}

// Single returns the bound node for mvar when it has exactly one binding.
// This is the contract required by the scripting bridge's `meta(name)` and
// per-metavariable script globals (spec.md §4.5): a metavariable exposed to
// script code must be unambiguous.
func (e Env) Single(mvar Metavar) (*sitter.Node, bool) {
	set, ok := e.bindings[mvar]
	if !ok || len(set) != 1 {
		return nil, false
	}
	for _, n := range set {
		return n, true
	}
	return nil, false
}
