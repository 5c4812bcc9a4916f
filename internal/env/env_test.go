package env_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/require"

	"github.com/fendrel/codeloom/internal/env"
)

func parseGo(t *testing.T, src string) (*sitter.Tree, []byte) {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return tree, []byte(src)
}

func TestEnvInsertAndGet(t *testing.T) {
	tree, _ := parseGo(t, "package p\nvar a = 1\nvar b = 2\n")
	root := tree.RootNode()
	e := env.New()

	a := root.Child(1)
	b := root.Child(2)
	e.Insert("x", a)
	e.Insert("x", b)

	nodes, ok := e.Get("x")
	require.True(t, ok)
	require.Len(t, nodes, 2)

	_, ok = e.Single("x")
	require.False(t, ok, "two distinct bindings must not be singleton")
}

func TestEnvSingleton(t *testing.T) {
	tree, _ := parseGo(t, "package p\nvar a = 1\n")
	root := tree.RootNode()
	e := env.New()
	e.Insert("x", root.Child(1))
	e.Insert("x", root.Child(1)) // same byte range: same binding

	n, ok := e.Single("x")
	require.True(t, ok)
	require.NotNil(t, n)
}

func TestEnvCloneIsolation(t *testing.T) {
	tree, _ := parseGo(t, "package p\nvar a = 1\nvar b = 2\n")
	root := tree.RootNode()
	base := env.New()
	base.Insert("x", root.Child(1))

	clone := base.Clone()
	clone.Insert("x", root.Child(2))

	baseNodes, _ := base.Get("x")
	cloneNodes, _ := clone.Get("x")
	require.Len(t, baseNodes, 1, "mutating the clone must not affect the original")
	require.Len(t, cloneNodes, 2)
}

func TestEnvExtend(t *testing.T) {
	tree, _ := parseGo(t, "package p\nvar a = 1\nvar b = 2\n")
	root := tree.RootNode()
	e1 := env.New()
	e1.Insert("x", root.Child(1))
	e2 := env.New()
	e2.Insert("x", root.Child(2))
	e2.Insert("y", root.Child(2))

	e1.Extend(e2)
	xs, _ := e1.Get("x")
	ys, _ := e1.Get("y")
	require.Len(t, xs, 2)
	require.Len(t, ys, 1)
}
