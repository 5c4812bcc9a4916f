package matchengine

import (
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fendrel/codeloom/internal/env"
)

type byteRange struct {
	start, end uint32
}

func childrenOf(node *sitter.Node) []*sitter.Node {
	count := int(node.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, node.Child(i))
	}
	return out
}

// Matches walks root breadth-first looking for matches of m.Pattern within
// text. A match's byte range is never reported twice. When recursive is
// true, the driver keeps descending into an already-matched node's children
// looking for further matches nested inside it (each with a byte range not
// reported before); when false, a match's subtree is skipped entirely once
// it matches. A node whose match repeats an already-reported range is
// descended into in either mode. limit caps the number of
// matches returned; 0 means unlimited.
//
// The breadth-first walk discovers matches level by level, not in source
// order: a sibling later in the text can match (and be appended) in the
// same round as a node whose match is only found one level down, inside an
// earlier sibling, in a later round. The returned slice is therefore always
// sorted by Match.Root.StartByte() before this function returns, rather
// than left in discovery order — callers that rewrite in place (the CLI,
// internal/rewrite) depend on that ordering.
func (m *Matcher) Matches(text string, root *sitter.Node, e env.Env, recursive bool, limit int) []Match {
	nodes := childrenOf(root)
	var matches []Match
	seen := make(map[byteRange]struct{})

loop:
	for len(nodes) > 0 {
		var next []*sitter.Node
		for _, node := range nodes {
			candidate := NewCandidate(node, text)
			if match, ok := m.MatchNode(e.Clone(), candidate); ok {
				key := byteRange{match.Root.StartByte(), match.Root.EndByte()}
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					matches = append(matches, match)
					if limit > 0 && len(matches) >= limit {
						break loop
					}
					if !recursive {
						continue
					}
				}
			}
			next = append(next, childrenOf(node)...)
		}
		nodes = next
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Root.StartByte() < matches[j].Root.StartByte()
	})
	return matches
}
