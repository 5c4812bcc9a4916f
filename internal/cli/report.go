package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/fendrel/codeloom/internal/env"
	"github.com/fendrel/codeloom/internal/matchengine"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorCyan  = "\x1b[36m"
)

// isColorTerminal reports whether fd (an *os.File's descriptor) is an
// interactive terminal, the same check the teacher's diff printer uses to
// decide whether to colorize output (the spec's out-of-scope "colored
// span" renderer has no other stand-in here).
func isColorTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// outputIsColorTerminal reports whether w is an interactive terminal. Only
// *os.File destinations can be a terminal at all; a buffer swapped in by
// tests or a redirected pipe never colorizes.
func outputIsColorTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isColorTerminal(f.Fd())
}

// reportMatch prints one line identifying where a bare (non-replacing)
// match occurred, plus, under --detail, one line per bound metavariable
// and a note for any metavariable bound more than once — the original's
// match_report annotation, minus the color-span rendering spec.md places
// out of scope.
func reportMatch(w io.Writer, path string, m matchengine.Match, detail bool) {
	start := m.Root.StartPoint()
	fmt.Fprintf(w, "%s:%d:%d: match\n", path, start.Row+1, start.Column+1)
	if detail {
		reportDetail(w, m.Env)
	}
}

func reportDetail(w io.Writer, e env.Env) {
	mvars := e.Metavars()
	sort.Slice(mvars, func(i, j int) bool { return mvars[i] < mvars[j] })
	for _, mvar := range mvars {
		nodes, _ := e.Get(mvar)
		for _, n := range nodes {
			p := n.StartPoint()
			fmt.Fprintf(w, "  $%s @ %d:%d\n", mvar, p.Row+1, p.Column+1)
		}
		if len(nodes) > 1 {
			fmt.Fprintf(w, "  note: multiple occurrences of $%s were structurally equal\n", mvar)
		}
	}
}

// unifiedDiff renders a before/after diff, grounded on the teacher's
// util.UnifiedDiff: difflib.SplitLines on each side, difflib.UnifiedDiff
// for the hunk computation, then an optional ANSI colorization pass keyed
// on whether the destination is an interactive terminal.
func unifiedDiff(orig, mod, path string, color bool) (string, error) {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(orig),
		B:        difflib.SplitLines(mod),
		FromFile: path,
		ToFile:   path + " (modified)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(d)
	if err != nil {
		return "", err
	}
	if !color {
		return text, nil
	}
	return colorizeDiff(text), nil
}

func colorizeDiff(text string) string {
	lines := splitKeepEmpty(text)
	out := ""
	for _, l := range lines {
		switch {
		case hasPrefix(l, "+"):
			out += colorGreen + l + colorReset + "\n"
		case hasPrefix(l, "-"):
			out += colorRed + l + colorReset + "\n"
		case hasPrefix(l, "@"):
			out += colorCyan + l + colorReset + "\n"
		default:
			out += l + "\n"
		}
	}
	return out
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func splitKeepEmpty(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
