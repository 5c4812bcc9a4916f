package matchengine

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Goal wraps a node from a parsed Pattern's goal tree together with the
// source buffer it belongs to — which, during nonlinear unification, is a
// candidate file's text rather than the pattern's own text (see
// Matcher.matchExpr), so this is kept generic rather than tied to Pattern.
type Goal struct {
	node *sitter.Node
	text string
}

// NewGoal wraps a goal-tree node for matching.
func NewGoal(node *sitter.Node, text string) Goal { return Goal{node: node, text: text} }

func (g Goal) str() string {
	return strings.TrimSpace(g.node.Content([]byte(g.text)))
}

func (g Goal) child(i int) Goal {
	return Goal{node: g.node.Child(i), text: g.text}
}

func (g Goal) nextSibling() (Goal, bool) {
	n := g.node.NextSibling()
	if n == nil {
		return Goal{}, false
	}
	return Goal{node: n, text: g.text}, true
}

// Candidate wraps a node from the file being searched.
type Candidate struct {
	node *sitter.Node
	text string
}

// NewCandidate wraps a candidate-tree node for matching.
func NewCandidate(node *sitter.Node, text string) Candidate { return Candidate{node: node, text: text} }

// Node returns the underlying tree-sitter node.
func (c Candidate) Node() *sitter.Node { return c.node }

// Text returns the source buffer c was parsed from.
func (c Candidate) Text() string { return c.text }

func (c Candidate) str() string {
	return strings.TrimSpace(c.node.Content([]byte(c.text)))
}

func (c Candidate) child(i int) Candidate {
	return Candidate{node: c.node.Child(i), text: c.text}
}

func (c Candidate) nextSibling() (Candidate, bool) {
	n := c.node.NextSibling()
	if n == nil {
		return Candidate{}, false
	}
	return Candidate{node: n, text: c.text}, true
}
