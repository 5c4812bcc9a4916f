package script

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	lua "github.com/yuin/gopher-lua"
)

const nodeMetatableName = "codeloom.node"

// luaNode is the userdata payload backing `focus` and every node returned
// from a node method (child/parent/sibling accessors): a tree-sitter node
// plus the source buffer it belongs to, scoped to the lifetime of one
// script evaluation call. There is no lifetime to forge here — the node
// and its backing text simply live as long as the Go values referencing
// them do, which outlives any single call into the Lua VM.
type luaNode struct {
	node *sitter.Node
	text string
}

func nodeText(n *sitter.Node, text string) string {
	return strings.TrimSpace(n.Content([]byte(text)))
}

func registerNodeType(L *lua.LState) {
	mt := L.NewTypeMetatable(nodeMetatableName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), nodeMethods))
}

func newNodeUserData(L *lua.LState, n *sitter.Node, text string) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &luaNode{node: n, text: text}
	L.SetMetatable(ud, L.GetTypeMetatable(nodeMetatableName))
	return ud
}

func checkNode(L *lua.LState, idx int) *luaNode {
	ud := L.CheckUserData(idx)
	n, ok := ud.Value.(*luaNode)
	if !ok {
		L.ArgError(idx, "expected a codeloom node")
		return nil
	}
	return n
}

func pushOptionalNode(L *lua.LState, n *sitter.Node, text string) int {
	if n == nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(newNodeUserData(L, n, text))
	return 1
}

var nodeMethods = map[string]lua.LGFunction{
	"child": func(L *lua.LState) int {
		n := checkNode(L, 1)
		i := L.CheckInt(2)
		if i < 0 || i >= int(n.node.ChildCount()) {
			L.Push(lua.LNil)
			return 1
		}
		return pushOptionalNode(L, n.node.Child(i), n.text)
	},
	"child_count": func(L *lua.LState) int {
		n := checkNode(L, 1)
		L.Push(lua.LNumber(n.node.ChildCount()))
		return 1
	},
	"kind": func(L *lua.LState) int {
		n := checkNode(L, 1)
		L.Push(lua.LString(n.node.Type()))
		return 1
	},
	"next_named_sibling": func(L *lua.LState) int {
		n := checkNode(L, 1)
		return pushOptionalNode(L, n.node.NextNamedSibling(), n.text)
	},
	"next_sibling": func(L *lua.LState) int {
		n := checkNode(L, 1)
		return pushOptionalNode(L, n.node.NextSibling(), n.text)
	},
	"parent": func(L *lua.LState) int {
		n := checkNode(L, 1)
		return pushOptionalNode(L, n.node.Parent(), n.text)
	},
	"prev_named_sibling": func(L *lua.LState) int {
		n := checkNode(L, 1)
		return pushOptionalNode(L, n.node.PrevNamedSibling(), n.text)
	},
	"prev_sibling": func(L *lua.LState) int {
		n := checkNode(L, 1)
		return pushOptionalNode(L, n.node.PrevSibling(), n.text)
	},
	"text": func(L *lua.LState) int {
		n := checkNode(L, 1)
		L.Push(lua.LString(nodeText(n.node, n.text)))
		return 1
	},
}
