// Package pattern turns codeloom pattern text ("let $x = $y;", "$_ == $_",
// "${{ t:match(\"^get\") }}") into a Pattern: a parsed goal subtree plus a
// placeholder table the matcher consults whenever it reaches one of the
// generated placeholder identifiers in that subtree.
package pattern

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/fendrel/codeloom/internal/nodetypes"
)

// Pattern is a pattern string, already parsed into a goal AST under the
// target grammar, with its placeholders recorded.
type Pattern struct {
	Lang   *sitter.Language
	Schema nodetypes.Schema
	Exprs  PlaceholderTable
	Text   string
	Tree   *sitter.Tree
	Root   *sitter.Node
	Where  []string
}

// Parse parses pat as a standalone pattern: its goal root is found by
// unwrapping single-child nodes all the way down (see parseFrom).
func Parse(lang *sitter.Language, schema nodetypes.Schema, pat string) (*Pattern, error) {
	return parseFrom(lang, schema, pat, 0, "")
}

// ParseKind is like Parse, but stops unwrapping single-child nodes once a
// node of the given kind is reached, even if that node itself still has
// exactly one named child. This lets a caller request a pattern rooted at a
// specific kind of node rather than whatever the unwrap heuristic would
// otherwise settle on. The scripting bridge's callbacks use Parse's
// behaviour (via SpawnSubPattern), not this.
func ParseKind(lang *sitter.Language, schema nodetypes.Schema, pat, kind string) (*Pattern, error) {
	return parseFrom(lang, schema, pat, 0, kind)
}

// nextVarStart reports the first unused placeholder index so that a pattern
// parsed from inside a script callback (one already mid-match, with its own
// placeholder table) doesn't collide with its parent pattern's names.
func nextVarStart(exprs PlaceholderTable) int {
	return len(exprs)
}

func parseFrom(lang *sitter.Language, schema nodetypes.Schema, pat string, varsStart int, unwrapUntil string) (*Pattern, error) {
	text, exprs, _ := lex(pat, varsStart)

	tree, err := parseSource(lang, text)
	if err != nil {
		return nil, fmt.Errorf("parsing pattern: %w", err)
	}

	// NOTE: a whole-program grammar can reject valid standalone
	// expressions/fragments ("$x + $y" is not a complete Go program). Retry
	// with the fragment wrapped in a block, then with a trailing
	// semicolon added to that wrapped form, before giving up and surfacing
	// whatever parse the grammar produced.
	if tree.RootNode().HasError() {
		text = "{ " + text + " }"
		tree, err = parseSource(lang, text)
		if err != nil {
			return nil, fmt.Errorf("parsing wrapped pattern: %w", err)
		}
		if tree.RootNode().HasError() {
			text = text + ";"
			tree, err = parseSource(lang, text)
			if err != nil {
				return nil, fmt.Errorf("parsing wrapped+terminated pattern: %w", err)
			}
			if tree.RootNode().HasError() {
				fmt.Fprintln(os.Stderr, "codeloom: parse error in pattern")
			}
		}
	}

	root := tree.RootNode()
	// Strip the outer whole-program node.
	if int(root.ChildCount()) == 1 {
		root = root.Child(0)
	}
	for int(root.NamedChildCount()) == 1 {
		if unwrapUntil != "" && root.Type() == unwrapUntil {
			break
		}
		root = root.NamedChild(0)
	}

	return &Pattern{
		Lang:   lang,
		Schema: schema,
		Exprs:  exprs,
		Text:   text,
		Tree:   tree,
		Root:   root,
	}, nil
}

func parseSource(lang *sitter.Language, src string) (*sitter.Tree, error) {
	p := sitter.NewParser()
	p.SetLanguage(lang)
	return p.ParseCtx(context.Background(), nil, []byte(src))
}

// SpawnSubPattern parses patText as a fresh pattern sharing this pattern's
// language and node-types schema, continuing placeholder numbering from
// where this pattern's own placeholders leave off so neither pattern's
// generated identifiers can collide with the other's. Used by the
// scripting bridge's `match`/`pat`/`rec` callbacks, which parse a pattern
// string handed to them from inside running script code.
func (p *Pattern) SpawnSubPattern(patText string) (*Pattern, error) {
	return parseFrom(p.Lang, p.Schema, patText, nextVarStart(p.Exprs), "")
}

// AddWhere appends a `--where` script clause: after a match succeeds, every
// clause must evaluate truthy or the match is discarded (spec.md §4.5).
func (p *Pattern) AddWhere(clauses []string) {
	p.Where = append(p.Where, clauses...)
}

// Lookup reports the FindExpr a placeholder identifier stands for, if any.
// The matcher calls this for every goal node it visits, keyed on that
// node's own text, since a placeholder always parses back as a bare
// identifier occupying the position the original construct held.
func (p *Pattern) Lookup(nodeText string) (FindExpr, bool) {
	expr, ok := p.Exprs[TmpVar(nodeText)]
	return expr, ok
}
