package mapfusion

import "github.com/specialistvlad/mapfuse/internal/graphdef"

// recursionCache memoizes which library functions can reach themselves
// through the call graph.
type recursionCache struct {
	lib   *graphdef.Library
	known map[string]bool
}

func newRecursionCache(lib *graphdef.Library) *recursionCache {
	return &recursionCache{lib: lib, known: make(map[string]bool)}
}

// isRecursive reports whether the named function calls itself, directly or
// through other library functions. Unknown names are not recursive.
func (c *recursionCache) isRecursive(name string) bool {
	if r, ok := c.known[name]; ok {
		return r
	}
	r := reachesSelf(c.lib, name)
	c.known[name] = r
	return r
}

func reachesSelf(lib *graphdef.Library, name string) bool {
	f, ok := lib.Find(name)
	if !ok {
		return false
	}
	seen := make(map[string]struct{})
	stack := f.Callees(lib)
	for len(stack) > 0 {
		callee := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if callee == name {
			return true
		}
		if _, done := seen[callee]; done {
			continue
		}
		seen[callee] = struct{}{}
		if cf, ok := lib.Find(callee); ok {
			stack = append(stack, cf.Callees(lib)...)
		}
	}
	return false
}
