package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/fendrel/codeloom/internal/pattern"
)

const patternMetatableName = "codeloom.pattern"

// luaPattern is the userdata payload returned by the `pat` global: a
// parsed sub-pattern, opaque to script code except as an argument to
// `pmatch`.
type luaPattern struct {
	pat *pattern.Pattern
}

func registerPatternType(L *lua.LState) {
	L.NewTypeMetatable(patternMetatableName)
}

func newPatternUserData(L *lua.LState, p *pattern.Pattern) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &luaPattern{pat: p}
	L.SetMetatable(ud, L.GetTypeMetatable(patternMetatableName))
	return ud
}

func checkPattern(L *lua.LState, idx int) *pattern.Pattern {
	ud := L.CheckUserData(idx)
	p, ok := ud.Value.(*luaPattern)
	if !ok {
		L.ArgError(idx, "expected a codeloom pattern")
		return nil
	}
	return p.pat
}
