// Package nodetypes parses a tree-sitter grammar's node-types.json into
// parent/child kind adjacency maps and answers whether one kind is a direct
// or transitive subtype of another (e.g. "binary_expression" under
// "_expression"). The structural matcher does not consult it.
package nodetypes

import "encoding/json"

// rawNode mirrors one entry of node-types.json. Most fields tree-sitter emits
// are irrelevant to structural matching and are dropped on unmarshal.
type rawNode struct {
	Type     string      `json:"type"`
	Named    bool        `json:"named"`
	Subtypes []rawSubtype `json:"subtypes"`
}

type rawSubtype struct {
	Type  string `json:"type"`
	Named bool   `json:"named"`
}

// Schema answers kind-relationship questions derived from one grammar's
// node-types.json: which kinds are listed as subtypes of which supertype
// kinds (e.g. tree-sitter-go's "_statement" lists "for_statement" as a
// subtype).
type Schema struct {
	// children[parent] is the set of kinds listed as parent's subtypes.
	children map[string]map[string]struct{}
	// parents[child] is the set of supertype kinds that list child as a subtype.
	parents map[string]map[string]struct{}
}

// Parse builds a Schema from the raw contents of a node-types.json file.
func Parse(nodeTypesJSON []byte) (Schema, error) {
	var nodes []rawNode
	if err := json.Unmarshal(nodeTypesJSON, &nodes); err != nil {
		return Schema{}, err
	}
	s := Schema{
		children: make(map[string]map[string]struct{}, len(nodes)),
		parents:  make(map[string]map[string]struct{}, len(nodes)),
	}
	for _, n := range nodes {
		subs := make(map[string]struct{}, len(n.Subtypes))
		for _, sub := range n.Subtypes {
			subs[sub.Type] = struct{}{}
			set, ok := s.parents[sub.Type]
			if !ok {
				set = make(map[string]struct{})
				s.parents[sub.Type] = set
			}
			set[n.Type] = struct{}{}
		}
		s.children[n.Type] = subs
	}
	return s, nil
}

// IsChildOf reports whether parent lists child directly among its subtypes.
func (s Schema) IsChildOf(child, parent string) bool {
	cs, ok := s.children[parent]
	if !ok {
		return false
	}
	_, ok = cs[child]
	return ok
}

// IsParentOf reports whether child has parent among the supertypes that
// list it as a subtype.
func (s Schema) IsParentOf(parent, child string) bool {
	ps, ok := s.parents[child]
	if !ok {
		return false
	}
	_, ok = ps[parent]
	return ok
}

// IsDescendantOf reports whether desc is ansc itself, or is reachable from
// ansc by following subtype edges transitively.
func (s Schema) IsDescendantOf(desc, ansc string) bool {
	if ansc == desc {
		return true
	}
	cs, ok := s.children[ansc]
	if !ok {
		return false
	}
	if _, ok := cs[desc]; ok {
		return true
	}
	for c := range cs {
		if s.IsDescendantOf(desc, c) {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether ansc is desc itself, or can reach desc by
// following subtype edges. Rather than recursing through IsAncestorOf
// itself, the recursive step calls IsDescendantOf(desc, c) for each direct
// subtype c of ansc; both express the same reachability.
func (s Schema) IsAncestorOf(ansc, desc string) bool {
	if ansc == desc {
		return true
	}
	cs, ok := s.children[ansc]
	if !ok {
		return false
	}
	if _, ok := cs[desc]; ok {
		return true
	}
	for c := range cs {
		if s.IsDescendantOf(desc, c) {
			return true
		}
	}
	return false
}
