// Package matchengine implements structural matching of a Pattern's goal
// tree against a candidate file's AST: the sibling-chain lockstep walk,
// metavariable nonlinear unification, ellipsis short-circuiting, and the
// breadth-first driver that finds every (deduplicated by byte range,
// optionally recursive, optionally limited) match in a file.
package matchengine

import (
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fendrel/codeloom/internal/env"
	"github.com/fendrel/codeloom/internal/pattern"
)

// Match is one successful match: the bindings it produced, and the
// candidate node it matched as a whole.
type Match struct {
	Env  env.Env
	Root *sitter.Node
}

// AttemptEvaluator evaluates embedded script code reached during one
// top-level match attempt: either a `${{ }}` placeholder standing in goal
// position, or a `--where` clause checked after a raw structural match
// succeeds. Implemented by internal/script's Bridge, which is handed the
// Matcher so its match/pat/pmatch/rec callbacks can re-enter matching.
type AttemptEvaluator interface {
	EvalPredicate(code string, m *Matcher, e env.Env, candidate Candidate) (env.Env, bool)
	EvalWhere(code string, m *Matcher, e env.Env, candidate Candidate) (bool, error)
}

// ScriptEvaluator mints a fresh AttemptEvaluator for each top-level match
// attempt, mirroring a fresh Lua VM per attempt.
type ScriptEvaluator interface {
	NewAttempt() AttemptEvaluator
}

// Matcher matches one Pattern's goal tree against candidate files.
type Matcher struct {
	Pattern *pattern.Pattern
	Scripts ScriptEvaluator
}

// New builds a Matcher for pat. scripts may be nil if pat contains no
// `${{ }}` placeholders and no `--where` clauses.
func New(pat *pattern.Pattern, scripts ScriptEvaluator) *Matcher {
	return &Matcher{Pattern: pat, Scripts: scripts}
}

func matchLeafNode(goal Goal, candidate Candidate) bool {
	return goal.str() == candidate.str()
}

func (m *Matcher) matchPlainNode(attempt AttemptEvaluator, e env.Env, goal Goal, candidate Candidate) (env.Env, *sitter.Node, bool) {
	goalCount := int(goal.node.ChildCount())
	candidateCount := int(candidate.node.ChildCount())

	if goalCount == 0 {
		// candidate: "{ x; }"  goal: "{ }"
		if candidateCount != 0 {
			return e, nil, false
		}
		// candidate: "x"  goal: "x"
		if matchLeafNode(goal, candidate) {
			return e, candidate.node, true
		}
		// candidate: "x"  goal: "y"
		return e, nil, false
	}

	if goal.node.Type() == candidate.node.Type() {
		goalChild := goal.child(0)
		candidateChild := candidate.child(0)
		for {
			if expr, ok := m.Pattern.Lookup(goalChild.str()); ok && expr.Kind == pattern.KindEllipsis {
				return e, candidate.node, true
			}
			if newEnv, _, ok := m.matchNodeInternal(attempt, e.Clone(), goalChild, candidateChild); ok {
				e.Extend(newEnv)
				gNext, gOk := goalChild.nextSibling()
				cNext, cOk := candidateChild.nextSibling()
				switch {
				case gOk && cOk:
					goalChild, candidateChild = gNext, cNext
				case !gOk && cOk:
					return e, candidate.node, true
				case gOk && !cOk:
					// Might be an ellipsis: keep the exhausted candidate
					// sibling and advance only the goal; the next
					// iteration's ellipsis check above decides whether
					// that's actually fine.
					goalChild = gNext
				default:
					return e, candidate.node, true
				}
			} else {
				cNext, cOk := candidateChild.nextSibling()
				if !cOk {
					return e, nil, false
				}
				candidateChild = cNext
			}
		}
	}

	// Kinds differ: the goal might still match one of the candidate's
	// children (e.g. a goal "_expression" against a candidate whose
	// immediate node is a wrapping parenthesized_expression).
	for i := 0; i < candidateCount; i++ {
		if newEnv, root, ok := m.matchNodeInternal(attempt, e.Clone(), goal, candidate.child(i)); ok {
			return newEnv, root, true
		}
	}
	return e, nil, false
}

func (m *Matcher) matchExpr(attempt AttemptEvaluator, e env.Env, expr pattern.FindExpr, candidate Candidate) (env.Env, *sitter.Node, bool) {
	switch expr.Kind {
	case pattern.KindAnonymous:
		return e, candidate.node, true

	case pattern.KindEllipsis:
		fmt.Fprintln(os.Stderr, "codeloom: `$..` has no meaning outside of a sibling position")
		return e, nil, false

	case pattern.KindMetavar:
		bound, ok := e.Get(expr.Metavar)
		if !ok {
			e.Insert(expr.Metavar, candidate.node)
			return e, candidate.node, true
		}
		extended := e.Clone()
		for _, g := range bound {
			goal := NewGoal(g, candidate.text)
			newEnv, _, ok := m.matchPlainNode(attempt, extended.Clone(), goal, candidate)
			if !ok {
				return e, nil, false
			}
			extended = newEnv
			extended.Insert(expr.Metavar, candidate.node)
		}
		return extended, candidate.node, true

	case pattern.KindScript:
		if attempt == nil {
			fmt.Fprintln(os.Stderr, "codeloom: pattern uses ${{ }} but no script evaluator is configured")
			return e, nil, false
		}
		newEnv, ok := attempt.EvalPredicate(expr.Script, m, e, candidate)
		if !ok {
			return e, nil, false
		}
		return newEnv, candidate.node, true
	}
	return e, nil, false
}

func (m *Matcher) matchNodeInternal(attempt AttemptEvaluator, e env.Env, goal Goal, candidate Candidate) (env.Env, *sitter.Node, bool) {
	if expr, ok := m.Pattern.Lookup(goal.str()); ok {
		return m.matchExpr(attempt, e, expr, candidate)
	}
	return m.matchPlainNode(attempt, e, goal, candidate)
}

// MatchNode attempts to match the pattern's goal root against one
// candidate node, starting from e. It mints a fresh script attempt (and so
// a fresh script VM) for the life of this single call, then checks every
// `--where` clause against the resulting bindings.
func (m *Matcher) MatchNode(e env.Env, candidate Candidate) (Match, bool) {
	var attempt AttemptEvaluator
	if m.Scripts != nil {
		attempt = m.Scripts.NewAttempt()
		if c, ok := attempt.(interface{ Close() }); ok {
			defer c.Close()
		}
	}

	goal := NewGoal(m.Pattern.Root, m.Pattern.Text)
	newEnv, root, ok := m.matchNodeInternal(attempt, e, goal, candidate)
	if !ok {
		return Match{}, false
	}

	for _, clause := range m.Pattern.Where {
		if attempt == nil {
			return Match{}, false
		}
		satisfied, err := attempt.EvalWhere(clause, m, newEnv, candidate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "codeloom: error in where clause: %v\n", err)
			return Match{}, false
		}
		if !satisfied {
			return Match{}, false
		}
	}
	return Match{Env: newEnv, Root: root}, true
}

// MatchNodeWithAttempt matches like MatchNode but reuses an already-running
// script attempt instead of minting a fresh one, and skips the --where
// check. This is what the scripting bridge's own `match`/`pmatch`
// callbacks call through to: they re-enter the matcher from inside a
// script that is already mid-evaluation, and must share that script's Lua
// state rather than spawn a nested one.
func (m *Matcher) MatchNodeWithAttempt(attempt AttemptEvaluator, e env.Env, candidate Candidate) (Match, bool) {
	goal := NewGoal(m.Pattern.Root, m.Pattern.Text)
	newEnv, root, ok := m.matchNodeInternal(attempt, e, goal, candidate)
	if !ok {
		return Match{}, false
	}
	return Match{Env: newEnv, Root: root}, true
}
