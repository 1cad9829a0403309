// Package script implements the sandboxed scripted evaluator for the
// Conditions, Terrain, and Resources phases: rules are Lua scripts loaded
// from a directory at startup, parsed once, and executed per cell against
// read-only tile/neighbor bindings with a bounded operation budget and
// strict per-cell error isolation.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// Rule is one compiled scripted rule, ready for repeated per-cell execution.
type Rule struct {
	Name  string
	proto *lua.FunctionProto
}

// LoadDir reads every *.lua file from dir, sorted ascending by filename for
// deterministic evaluation order, and compiles each one. A syntax error in
// any file aborts the whole load (startup failure, not a per-cell one).
func LoadDir(dir string) ([]*Rule, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // phases with no rule directory are no-ops
		}
		return nil, fmt.Errorf("script: reading rule directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	rules := make([]*Rule, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("script: reading rule %q: %w", path, err)
		}

		chunk, err := parse.Parse(strings.NewReader(string(src)), name)
		if err != nil {
			return nil, fmt.Errorf("script: syntax error in %q: %w", path, err)
		}
		proto, err := lua.Compile(chunk, name)
		if err != nil {
			return nil, fmt.Errorf("script: compiling %q: %w", path, err)
		}

		rules = append(rules, &Rule{Name: strings.TrimSuffix(name, ".lua"), proto: proto})
	}
	return rules, nil
}
