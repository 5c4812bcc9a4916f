// Package script implements codeloom's embedded scripting bridge: a
// gopher-lua VM exposing the focus node, the candidate's own source text,
// per-singleton-metavariable globals, and the bind/rx/meta/match/pat/
// pmatch/rec callbacks that `${{ }}` predicates and `--where` clauses use.
package script

import (
	"fmt"
	"os"
	"regexp"

	lua "github.com/yuin/gopher-lua"

	"github.com/fendrel/codeloom/internal/env"
	"github.com/fendrel/codeloom/internal/matchengine"
)

// Bridge is a matchengine.ScriptEvaluator: it mints a fresh VM per
// top-level match attempt, mirroring one `Lua::new()` per call to
// Matcher.MatchNode.
type Bridge struct{}

// NewBridge returns a ready-to-use scripting bridge.
func NewBridge() *Bridge { return &Bridge{} }

// NewAttempt mints a fresh Lua VM for one top-level match attempt.
func (b *Bridge) NewAttempt() matchengine.AttemptEvaluator {
	L := lua.NewState()
	registerNodeType(L)
	registerPatternType(L)
	return &attempt{L: L}
}

type attempt struct {
	L *lua.LState
}

// Close releases the attempt's Lua VM. matchengine.Matcher calls this
// automatically once a top-level match attempt finishes.
func (a *attempt) Close() { a.L.Close() }

// EvalPredicate evaluates a `${{ }}` placeholder reached in goal position:
// code must evaluate truthy for the candidate to be accepted. Any `bind`
// calls the script made are merged into the returned environment.
func (a *attempt) EvalPredicate(code string, m *matchengine.Matcher, e env.Env, candidate matchengine.Candidate) (env.Env, bool) {
	L := a.L
	binds := env.New()

	L.SetGlobal("focus", newNodeUserData(L, candidate.Node(), candidate.Text()))
	L.SetGlobal("t", lua.LString(nodeText(candidate.Node(), candidate.Text())))
	L.SetGlobal("k", lua.LString(candidate.Node().Type()))

	L.SetGlobal("bind", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		binds.Insert(env.Metavar(name), candidate.Node())
		return 0
	}))

	L.SetGlobal("match", L.NewFunction(func(L *lua.LState) int {
		patText := L.CheckString(1)
		L.Push(lua.LBool(a.subMatch(m, e, candidate, patText)))
		return 1
	}))

	L.SetGlobal("pat", L.NewFunction(func(L *lua.LState) int {
		patText := L.CheckString(1)
		sub, err := m.Pattern.SpawnSubPattern(patText)
		if err != nil {
			L.RaiseError("bad pattern: %v", err)
			return 0
		}
		L.Push(newPatternUserData(L, sub))
		return 1
	}))

	L.SetGlobal("pmatch", L.NewFunction(func(L *lua.LState) int {
		sub := checkPattern(L, 1)
		node := checkNode(L, 2)
		sm := matchengine.New(sub, m.Scripts)
		_, ok := sm.MatchNodeWithAttempt(a, e.Clone(), matchengine.NewCandidate(node.node, node.text))
		L.Push(lua.LBool(ok))
		return 1
	}))

	L.SetGlobal("rec", L.NewFunction(func(L *lua.LState) int {
		patText := L.CheckString(1)
		sub, err := m.Pattern.SpawnSubPattern(patText)
		if err != nil {
			L.RaiseError("bad pattern: %v", err)
			return 0
		}
		sm := matchengine.New(sub, m.Scripts)
		ms := sm.Matches(candidate.Text(), candidate.Node(), e.Clone(), true, 1)
		L.Push(lua.LBool(len(ms) > 0))
		return 1
	}))

	setCommonGlobals(L, e, candidate.Text())

	ok, err := evalBool(L, code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "codeloom: bad script code %q: %v\n", code, err)
		return e, false
	}
	if !ok {
		return e, false
	}
	out := e.Clone()
	out.Extend(binds)
	return out, true
}

// EvalWhere evaluates one `--where` clause against a successful match's
// bindings, reusing the same VM the predicate placeholders in this
// attempt ran in.
func (a *attempt) EvalWhere(code string, m *matchengine.Matcher, e env.Env, candidate matchengine.Candidate) (bool, error) {
	setCommonGlobals(a.L, e, candidate.Text())
	return evalBool(a.L, code)
}

func (a *attempt) subMatch(m *matchengine.Matcher, e env.Env, candidate matchengine.Candidate, patText string) bool {
	sub, err := m.Pattern.SpawnSubPattern(patText)
	if err != nil {
		return false
	}
	sm := matchengine.New(sub, m.Scripts)
	_, ok := sm.MatchNodeWithAttempt(a, e.Clone(), candidate)
	return ok
}

// setCommonGlobals installs the globals available to every script
// evaluation regardless of call site: one string global per uniquely-bound
// metavariable, plus `meta` and `rx`.
func setCommonGlobals(L *lua.LState, e env.Env, text string) {
	for _, mvar := range e.Metavars() {
		if n, ok := e.Single(mvar); ok {
			L.SetGlobal(string(mvar), lua.LString(nodeText(n, text)))
		}
	}

	L.SetGlobal("meta", L.NewFunction(func(L *lua.LState) int {
		k := L.CheckString(1)
		if n, ok := e.Single(env.Metavar(k)); ok {
			L.Push(lua.LString(nodeText(n, text)))
			return 1
		}
		L.Push(lua.LNil)
		return 1
	}))

	L.SetGlobal("rx", L.NewFunction(func(L *lua.LState) int {
		pat := L.CheckString(1)
		s := L.CheckString(2)
		re, err := regexp.Compile(pat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "codeloom: bad regex %q: %v\n", pat, err)
			L.Push(lua.LBool(false))
			return 1
		}
		L.Push(lua.LBool(re.MatchString(s)))
		return 1
	}))
}

// EvalReplacement evaluates a `${{ }}` placeholder appearing in a
// replacement pattern. Unlike matching, where one VM is shared across an
// entire top-level attempt, each replacement placeholder gets its own
// fresh, short-lived VM — there is no multi-step attempt to share it
// across.
func EvalReplacement(code string, e env.Env, text string) (string, error) {
	L := lua.NewState()
	defer L.Close()
	registerNodeType(L)
	setCommonGlobals(L, e, text)

	v, err := evalValue(L, code)
	if err != nil {
		return "", err
	}
	return lua.LVAsString(v), nil
}

// evalBool evaluates code and coerces the result to a boolean using Lua's
// own truthiness rules (nil and false are falsy, everything else truthy).
func evalBool(L *lua.LState, code string) (bool, error) {
	v, err := evalValue(L, code)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(v), nil
}

// evalValue evaluates code as a Lua expression. gopher-lua, unlike rlua's
// Chunk::eval, has no built-in notion of "load this as an expression": a
// chunk is a sequence of statements. Most pattern scripts are a single
// expression ("true", "match(\"$x\")", "not match(...)"), so the natural
// thing to try first is wrapping code in `return ( code )`; if that fails
// to parse, fall back to running code verbatim as a chunk (covering
// scripts that are themselves one or more statements ending in their own
// return).
func evalValue(L *lua.LState, code string) (lua.LValue, error) {
	fn, err := L.LoadString("return (" + code + ")")
	if err != nil {
		fn, err = L.LoadString(code)
		if err != nil {
			return lua.LNil, err
		}
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return lua.LNil, err
	}
	v := L.Get(-1)
	L.Pop(1)
	return v, nil
}
