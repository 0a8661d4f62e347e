package rules

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"sync"
)

//go:embed builtin/*.hcl
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtinSet  map[string]*Rules
	builtinErr  error
)

func loadBuiltins() {
	builtinSet = map[string]*Rules{}
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		builtinErr = err
		return
	}
	for _, e := range entries {
		src, err := builtinFS.ReadFile("builtin/" + e.Name())
		if err != nil {
			builtinErr = err
			return
		}
		all, err := ParseAll(src, e.Name())
		if err != nil {
			builtinErr = fmt.Errorf("builtin %s: %w", e.Name(), err)
			return
		}
		for _, r := range all {
			if _, dup := builtinSet[r.Key]; dup {
				builtinErr = fmt.Errorf("builtin variant %q defined twice", r.Key)
				return
			}
			builtinSet[r.Key] = r
		}
	}
}

// Builtin returns the embedded variant with the given key
func Builtin(key string) (*Rules, error) {
	builtinOnce.Do(loadBuiltins)
	if builtinErr != nil {
		return nil, builtinErr
	}
	r, ok := builtinSet[key]
	if !ok {
		return nil, fmt.Errorf("unknown builtin variant %q", key)
	}
	return r, nil
}

// BuiltinNames lists the embedded variant keys, sorted
func BuiltinNames() []string {
	builtinOnce.Do(loadBuiltins)
	names := make([]string, 0, len(builtinSet))
	for k := range builtinSet {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadFile parses a single-variant rule document from disk
func LoadFile(path string) (*Rules, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src, path)
}
