// Package rewrite turns a matchengine.Match into replacement text and
// applies a batch of matches to a file's source buffer. It mirrors
// Pattern::replacement/Pattern::replace from the reference implementation:
// the replacement skeleton is the pattern's own goal text (not the original
// file text) with every placeholder substituted for what it bound to.
package rewrite

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fendrel/codeloom/internal/matchengine"
	"github.com/fendrel/codeloom/internal/pattern"
	"github.com/fendrel/codeloom/internal/script"
)

// ErrAnonymousInReplacement and ErrEllipsisInReplacement report a
// replacement pattern using a construct that only makes sense in a search
// pattern: `$_` and `$..` have nothing to substitute with on the output
// side.
var (
	ErrAnonymousInReplacement = errors.New("rewrite: `$_` is not valid in a replacement pattern")
	ErrEllipsisInReplacement  = errors.New("rewrite: `$..` is not valid in a replacement pattern")
	ErrUnboundMetavar         = errors.New("rewrite: metavariable in replacement was never bound by the match")
)

// Replacement returns the substituted text a Match should be replaced with,
// given the replacement pattern repl was parsed under. text is the
// candidate file's own source buffer (placeholders substitute in the
// matched nodes' text taken from text, not from repl's own text).
func Replacement(repl *pattern.Pattern, m matchengine.Match, text string) (string, error) {
	goalNode := repl.Root
	replacement := goalNode.Content([]byte(repl.Text))

	for tvar, expr := range repl.Exprs {
		switch expr.Kind {
		case pattern.KindAnonymous:
			return "", ErrAnonymousInReplacement
		case pattern.KindEllipsis:
			return "", ErrEllipsisInReplacement
		case pattern.KindMetavar:
			nodes, ok := m.Env.Get(expr.Metavar)
			if !ok {
				return "", fmt.Errorf("%w: $%s", ErrUnboundMetavar, expr.Metavar)
			}
			if len(nodes) == 0 {
				continue
			}
			bound := nodes[0].Content([]byte(text))
			replacement = strings.ReplaceAll(replacement, string(tvar), bound)
		case pattern.KindScript:
			evaled, err := script.EvalReplacement(expr.Script, m.Env, text)
			if err != nil {
				fmt.Fprintf(os.Stderr, "codeloom: %v\n", err)
				continue
			}
			replacement = strings.ReplaceAll(replacement, string(tvar), evaled)
		}
	}
	return replacement, nil
}

// Apply replaces m's matched span within text with the replacement
// substituted from repl, accounting for offset: the running difference in
// length between the original buffer and text so far, caused by earlier
// replacements applied to the same buffer in byte-offset order. It returns
// the updated text and the new offset.
func Apply(repl *pattern.Pattern, m matchengine.Match, text string, offset int) (string, int, error) {
	start := int(m.Root.StartByte()) + offset
	end := int(m.Root.EndByte()) + offset
	if start < 0 || end > len(text) || start > end {
		return text, offset, fmt.Errorf("rewrite: match span [%d:%d] out of bounds for %d-byte buffer", start, end, len(text))
	}

	// m's nodes carry byte offsets into the buffer as it was parsed; shift
	// text by offset so the bound nodes' text is read from where earlier
	// replacements moved it.
	view := text
	if offset > 0 {
		view = text[offset:]
	} else if offset < 0 {
		view = strings.Repeat(" ", -offset) + text
	}
	replacement, err := Replacement(repl, m, view)
	if err != nil {
		return text, offset, err
	}

	out := text[:start] + replacement + text[end:]
	newOffset := offset + (len(replacement) - (end - start))
	return out, newOffset, nil
}

// ApplyAll applies every match in ms to text in order, threading the offset
// from one replacement to the next. ms must already be sorted by the start
// byte of its Match.Root — matchengine.Matches guarantees this on its
// return value, but it is an enforced precondition of this function, not
// an incidental property of any particular caller; passing an out-of-order
// ms will corrupt the offset accounting. A replacement that fails (an
// unbound metavariable, a `$_`/`$..` in repl) stops the batch and returns
// the error alongside the text as successfully rewritten so far.
func ApplyAll(repl *pattern.Pattern, ms []matchengine.Match, text string) (string, error) {
	offset := 0
	for _, m := range ms {
		var err error
		text, offset, err = Apply(repl, m, text, offset)
		if err != nil {
			return text, err
		}
	}
	return text, nil
}
