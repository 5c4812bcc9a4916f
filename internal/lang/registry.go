// Package lang resolves a short language name to the grammar and node-kind
// schema the rest of codeloom needs: a *sitter.Language to parse with, and
// an internal/nodetypes.Schema describing the grammar's supertype
// groupings, carried on each Pattern.
package lang

import (
	_ "embed"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/fendrel/codeloom/internal/nodetypes"
)

//go:embed nodetypes/go.json
var goNodeTypesJSON []byte

//go:embed nodetypes/python.json
var pythonNodeTypesJSON []byte

//go:embed nodetypes/javascript.json
var javascriptNodeTypesJSON []byte

//go:embed nodetypes/typescript.json
var typescriptNodeTypesJSON []byte

// Language bundles what codeloom needs to parse and structurally match one
// grammar's source files.
type Language struct {
	Name   string
	Sitter *sitter.Language
	Schema nodetypes.Schema
}

var registry map[string]*Language

func init() {
	registry = make(map[string]*Language, 4)
	for _, entry := range []struct {
		name          string
		sitterLang    *sitter.Language
		nodeTypesJSON []byte
	}{
		{"go", golang.GetLanguage(), goNodeTypesJSON},
		{"python", python.GetLanguage(), pythonNodeTypesJSON},
		{"javascript", javascript.GetLanguage(), javascriptNodeTypesJSON},
		{"typescript", typescript.GetLanguage(), typescriptNodeTypesJSON},
	} {
		schema, err := nodetypes.Parse(entry.nodeTypesJSON)
		if err != nil {
			panic(fmt.Sprintf("lang: embedded node-types.json for %s is invalid: %v", entry.name, err))
		}
		registry[entry.name] = &Language{Name: entry.name, Sitter: entry.sitterLang, Schema: schema}
	}
}

// aliases maps a colloquial spelling to the canonical registry key, mirroring
// the teacher's own ResolveLanguage accepting both "go" and "golang".
var aliases = map[string]string{
	"golang": "go",
	"py":     "python",
	"js":     "javascript",
	"ts":     "typescript",
}

// Resolve looks up name (e.g. "go", "golang", "python", "js") and reports
// whether it names a supported grammar.
func Resolve(name string) (*Language, bool) {
	if canon, ok := aliases[name]; ok {
		name = canon
	}
	l, ok := registry[name]
	return l, ok
}

// Supported returns the canonical names of every grammar this build can
// parse.
func Supported() []string {
	return []string{"go", "python", "javascript", "typescript"}
}
