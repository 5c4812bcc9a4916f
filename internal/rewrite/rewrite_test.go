package rewrite_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/require"

	"github.com/fendrel/codeloom/internal/env"
	"github.com/fendrel/codeloom/internal/matchengine"
	"github.com/fendrel/codeloom/internal/nodetypes"
	"github.com/fendrel/codeloom/internal/pattern"
	"github.com/fendrel/codeloom/internal/rewrite"
)

func emptySchema(t *testing.T) nodetypes.Schema {
	t.Helper()
	s, err := nodetypes.Parse([]byte(`[]`))
	require.NoError(t, err)
	return s
}

func parseGo(t *testing.T, src string) *sitter.Tree {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return tree
}

func mustPattern(t *testing.T, text string) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Parse(golang.GetLanguage(), emptySchema(t), text)
	require.NoError(t, err)
	return p
}

func TestReplacementSubstitutesMetavar(t *testing.T) {
	goalPat := mustPattern(t, `var $x = $y`)
	replPat := mustPattern(t, `var $x = renamed($y)`)

	text := "var a = 1"
	tree := parseGo(t, text)
	m := matchengine.New(goalPat, nil)
	match, ok := m.MatchNode(env.New(), matchengine.NewCandidate(tree.RootNode(), text))
	require.True(t, ok)

	out, err := rewrite.Replacement(replPat, match, text)
	require.NoError(t, err)
	require.Equal(t, "a = renamed(1)", out)
}

func TestReplacementRejectsAnonymousWildcard(t *testing.T) {
	goalPat := mustPattern(t, `var $x = $y`)
	replPat := mustPattern(t, `var $_ = $y`)

	text := "var a = 1"
	tree := parseGo(t, text)
	m := matchengine.New(goalPat, nil)
	match, ok := m.MatchNode(env.New(), matchengine.NewCandidate(tree.RootNode(), text))
	require.True(t, ok)

	_, err := rewrite.Replacement(replPat, match, text)
	require.ErrorIs(t, err, rewrite.ErrAnonymousInReplacement)
}

func TestApplyAllReplacesEveryMatchWithOffsetTracking(t *testing.T) {
	goalPat := mustPattern(t, `var $x = $y`)
	replPat := mustPattern(t, `var $x = renamed($y)`)

	text := "var a = 1\nvar b = 22"
	tree := parseGo(t, text)
	root := tree.RootNode()

	m := matchengine.New(goalPat, nil)
	ms := m.Matches(text, root, env.New(), false, 0)
	require.Len(t, ms, 2)

	out, err := rewrite.ApplyAll(replPat, ms, text)
	require.NoError(t, err)
	require.Equal(t, "var a = renamed(1)\nvar b = renamed(22)", out)
}

func TestApplyAllRewritesNestedAndSiblingMatchesInSourceOrder(t *testing.T) {
	goalPat := mustPattern(t, `var $x = $y`)
	replPat := mustPattern(t, `var $x = renamed($y)`)

	// The if-statement wraps a matching var declaration, followed by a
	// matching sibling var declaration at the enclosing block's own level.
	// The enclosing func already matches through "var a = 1", so a
	// recursive walk is what reaches "var b = 2"; the second replacement
	// must then be read and placed past the first one's length change.
	text := "func f() {\n\tif true {\n\t\tvar a = 1\n\t}\n\tvar b = 2\n}\n"
	tree := parseGo(t, text)
	root := tree.RootNode()

	m := matchengine.New(goalPat, nil)
	ms := m.Matches(text, root, env.New(), true, 0)
	require.Len(t, ms, 2)
	require.Less(t, ms[0].Root.StartByte(), ms[1].Root.StartByte())

	out, err := rewrite.ApplyAll(replPat, ms, text)
	require.NoError(t, err)
	require.Equal(t, "func f() {\n\tif true {\n\t\tvar a = renamed(1)\n\t}\n\tvar b = renamed(2)\n}\n", out)
}

func TestApplyReportsOutOfBoundsSpan(t *testing.T) {
	goalPat := mustPattern(t, `var $x = $y`)
	replPat := mustPattern(t, `var $x = renamed($y)`)

	text := "var a = 1"
	tree := parseGo(t, text)
	m := matchengine.New(goalPat, nil)
	match, ok := m.MatchNode(env.New(), matchengine.NewCandidate(tree.RootNode(), text))
	require.True(t, ok)

	_, _, err := rewrite.Apply(replPat, match, "short", 0)
	require.Error(t, err)
}
