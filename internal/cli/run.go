// Package cli implements codeloom's command-line surface: flag parsing,
// file argument expansion, the per-file match/replace loop, and
// match/diff reporting. It is the concrete binding of spec.md §6's
// "External interfaces" to a Go CLI built the way the teacher builds its
// own command entry points.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fendrel/codeloom/internal/cliconfig"
	"github.com/fendrel/codeloom/internal/env"
	"github.com/fendrel/codeloom/internal/lang"
	"github.com/fendrel/codeloom/internal/matchengine"
	"github.com/fendrel/codeloom/internal/pattern"
	"github.com/fendrel/codeloom/internal/rewrite"
	"github.com/fendrel/codeloom/internal/script"
)

// Options is one invocation's fully-resolved configuration: the merge of
// cliconfig defaults and whatever flags the user passed.
type Options struct {
	Lang         string
	Pattern      string
	Where        []string
	Replace      *string
	Recursive    bool
	Limit        int
	OnlyMatching bool
	DryRun       bool
	Confirm      bool
	Detail       bool
	OnParseError cliconfig.OnParseError
	Files        []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (o *Options) stdin() io.Reader {
	if o.Stdin != nil {
		return o.Stdin
	}
	return os.Stdin
}

func (o *Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o *Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

// Run executes one codeloom invocation: resolve the grammar, parse the
// search pattern (and replacement pattern, if given), expand FILE
// arguments, then match and optionally rewrite each file in turn.
// It returns a non-nil error for an unresolvable language, a malformed
// pattern, a malformed glob among the FILE arguments, a parse error under
// the "error" on-parse-error policy, or a failure writing the rewritten
// files at the end; per-file read problems are reported to stderr and
// skipped rather than aborting the whole run.
func Run(opts Options) error {
	l, ok := lang.Resolve(opts.Lang)
	if !ok {
		return fmt.Errorf("codeloom: unsupported language %q (supported: %s)", opts.Lang, strings.Join(lang.Supported(), ", "))
	}

	pat, err := pattern.Parse(l.Sitter, l.Schema, opts.Pattern)
	if err != nil {
		return fmt.Errorf("codeloom: parsing pattern: %w", err)
	}
	pat.AddWhere(opts.Where)

	var replPat *pattern.Pattern
	if opts.Replace != nil {
		replPat, err = pattern.Parse(l.Sitter, l.Schema, *opts.Replace)
		if err != nil {
			return fmt.Errorf("codeloom: parsing replacement pattern: %w", err)
		}
	}

	matcher := matchengine.New(pat, script.NewBridge())

	files, err := expandFileArgs(opts.Files)
	if err != nil {
		return fmt.Errorf("codeloom: expanding file arguments: %w", err)
	}

	tx := rewrite.Begin()
	reader := bufio.NewReader(opts.stdin())

	for _, path := range files {
		if err := processFile(&opts, matcher, replPat, path, reader, tx); err != nil {
			if errExit, ok := err.(*exitError); ok {
				return errExit
			}
			fmt.Fprintf(opts.stderr(), "codeloom: %s: %v\n", path, err)
		}
	}

	if opts.DryRun {
		return nil
	}
	return tx.Commit(rewrite.AtomicWrite)
}

// exitError marks an error that must abort the whole run (the
// --on-parse-error=error policy), as opposed to one that's reported and
// skipped so the remaining files still get processed.
type exitError struct{ err error }

func (e *exitError) Error() string { return e.err.Error() }

func processFile(opts *Options, matcher *matchengine.Matcher, replPat *pattern.Pattern, path string, stdin *bufio.Reader, tx *rewrite.Transaction) error {
	var text string
	var err error
	isStdin := path == "-"
	if isStdin {
		b, readErr := io.ReadAll(stdin)
		if readErr != nil {
			return fmt.Errorf("reading stdin: %w", readErr)
		}
		text = string(b)
	} else {
		b, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading file: %w", readErr)
		}
		text = string(b)
	}

	tree, err := parseSource(matcher.Pattern.Lang, text)
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	if tree.RootNode().HasError() {
		switch opts.OnParseError {
		case cliconfig.OnParseErrorIgnore:
		case cliconfig.OnParseErrorWarn:
			fmt.Fprintf(opts.stderr(), "[WARN] parse error in %s\n", path)
		case cliconfig.OnParseErrorError:
			return &exitError{fmt.Errorf("[ERROR] parse error in %s", path)}
		}
	}

	ms := matcher.Matches(text, tree.RootNode(), env.New(), opts.Recursive, opts.Limit)
	if len(ms) == 0 {
		return nil
	}

	if replPat == nil {
		return reportOnly(opts, path, text, ms)
	}
	return applyReplacements(opts, path, text, replPat, ms, isStdin, stdin, tx)
}

func reportOnly(opts *Options, path, text string, ms []matchengine.Match) error {
	out := opts.stdout()
	for _, m := range ms {
		if opts.OnlyMatching {
			fmt.Fprintln(out, m.Root.Content([]byte(text)))
			continue
		}
		reportMatch(out, path, m, opts.Detail)
	}
	return nil
}

func applyReplacements(opts *Options, path, text string, replPat *pattern.Pattern, ms []matchengine.Match, isStdin bool, stdin *bufio.Reader, tx *rewrite.Transaction) error {
	out := opts.stdout()
	original := text
	offset := 0

	for _, m := range ms {
		replacement, err := rewrite.Replacement(replPat, m, original)
		if err != nil {
			fmt.Fprintf(opts.stderr(), "codeloom: %s: %v\n", path, err)
			continue
		}

		if opts.OnlyMatching {
			fmt.Fprintln(out, replacement)
			continue
		}

		if opts.Confirm && !confirmPrompt(opts, stdin, path, m, replacement) {
			continue
		}

		newText, newOffset, err := rewrite.Apply(replPat, m, text, offset)
		if err != nil {
			fmt.Fprintf(opts.stderr(), "codeloom: %s: %v\n", path, err)
			continue
		}
		text, offset = newText, newOffset
	}

	if opts.OnlyMatching {
		return nil
	}
	if text == original {
		return nil
	}

	diff, err := unifiedDiff(original, text, path, outputIsColorTerminal(opts.stdout()))
	if err != nil {
		return fmt.Errorf("building diff: %w", err)
	}
	fmt.Fprint(out, diff)

	if opts.DryRun || isStdin {
		return nil
	}
	tx.Stage(path, original, text)
	return nil
}

func confirmPrompt(opts *Options, stdin *bufio.Reader, path string, m matchengine.Match, replacement string) bool {
	start := m.Root.StartPoint()
	fmt.Fprintf(opts.stdout(), "%s:%d:%d: replace with %q? [Y/n] ", path, start.Row+1, start.Column+1, replacement)
	line, _ := stdin.ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "" || answer == "Y" || answer == "y"
}

func parseSource(l *sitter.Language, text string) (*sitter.Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(l)
	return p.ParseCtx(context.Background(), nil, []byte(text))
}

// expandFileArgs expands any glob metacharacters in FILE arguments via
// doublestar (so "**/*.go" works the same as a shell with globstar
// enabled), leaving "-" (stdin) and plain literal paths untouched.
func expandFileArgs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if a == "-" || !strings.ContainsAny(a, "*?[") {
			out = append(out, a)
			continue
		}
		matches, err := doublestar.FilepathGlob(a)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", a, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}
