package pattern

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fendrel/codeloom/internal/env"
)

func TestLexEmpty(t *testing.T) {
	text, exprs, _ := lex("", 0)
	require.Equal(t, "", text)
	require.Empty(t, exprs)
}

func TestLexMetavar(t *testing.T) {
	text, exprs, _ := lex("$x", 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindMetavar, Metavar: env.Metavar("x")}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexAnonymous(t *testing.T) {
	text, exprs, _ := lex("$_", 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindAnonymous}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexEllipsis(t *testing.T) {
	text, exprs, _ := lex("$..", 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindEllipsis}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexScript(t *testing.T) {
	text, exprs, _ := lex("${{true}}", 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindScript, Script: "true"}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexTwoScripts(t *testing.T) {
	text, exprs, _ := lex("${{true}} == ${{false}}", 0)
	require.Equal(t, "codeloom_tmp_var_0 == codeloom_tmp_var_1", text)
	require.Equal(t, FindExpr{Kind: KindScript, Script: "true"}, exprs[TmpVar("codeloom_tmp_var_0")])
	require.Equal(t, FindExpr{Kind: KindScript, Script: "false"}, exprs[TmpVar("codeloom_tmp_var_1")])
}

func TestLexScriptContainingPattern(t *testing.T) {
	text, exprs, _ := lex(`${{match("$x")}}`, 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindScript, Script: `match("$x")`}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexTwoMetavars(t *testing.T) {
	text, exprs, _ := lex("let $x = $y;", 0)
	require.Equal(t, "let codeloom_tmp_var_0 = codeloom_tmp_var_1;", text)
	require.Equal(t, FindExpr{Kind: KindMetavar, Metavar: env.Metavar("x")}, exprs[TmpVar("codeloom_tmp_var_0")])
	require.Equal(t, FindExpr{Kind: KindMetavar, Metavar: env.Metavar("y")}, exprs[TmpVar("codeloom_tmp_var_1")])
}

func TestLexNestedScriptBraces(t *testing.T) {
	text, exprs, _ := lex(`${{not match("${{false}}")}}`, 0)
	require.Equal(t, "codeloom_tmp_var_0", text)
	require.Equal(t, FindExpr{Kind: KindScript, Script: `not match("${{false}}")`}, exprs[TmpVar("codeloom_tmp_var_0")])
}

func TestLexPlainTextPassesThrough(t *testing.T) {
	text, exprs, _ := lex("if x == 1 {}", 0)
	require.Equal(t, "if x == 1 {}", text)
	require.Empty(t, exprs)
}

func TestLexVarsStartContinuesNumbering(t *testing.T) {
	text, exprs, next := lex("$x", 3)
	require.Equal(t, "codeloom_tmp_var_3", text)
	require.Contains(t, exprs, TmpVar("codeloom_tmp_var_3"))
	require.Equal(t, 4, next)
}
