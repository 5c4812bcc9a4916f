package lang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fendrel/codeloom/internal/lang"
)

func TestResolveKnownLanguages(t *testing.T) {
	for _, name := range []string{"go", "python", "javascript", "typescript"} {
		l, ok := lang.Resolve(name)
		require.Truef(t, ok, "expected %s to resolve", name)
		require.NotNil(t, l.Sitter)
		require.Equal(t, name, l.Name)
	}
}

func TestResolveAliases(t *testing.T) {
	l, ok := lang.Resolve("golang")
	require.True(t, ok)
	require.Equal(t, "go", l.Name)

	l, ok = lang.Resolve("ts")
	require.True(t, ok)
	require.Equal(t, "typescript", l.Name)
}

func TestResolveUnknownLanguage(t *testing.T) {
	_, ok := lang.Resolve("cobol")
	require.False(t, ok)
}

func TestGoSchemaKnowsExpressionSupertype(t *testing.T) {
	l, ok := lang.Resolve("go")
	require.True(t, ok)
	require.True(t, l.Schema.IsChildOf("binary_expression", "_expression"))
	require.True(t, l.Schema.IsParentOf("_expression", "call_expression"))
}

func TestSupportedListsFourGrammars(t *testing.T) {
	require.ElementsMatch(t, []string{"go", "python", "javascript", "typescript"}, lang.Supported())
}
