package config

import (
	"sync"

	"github.com/gobwas/glob"
)

var (
	globCacheMu sync.Mutex
	globCache   = make(map[string]glob.Glob)
)

func compileGlob(pattern string) glob.Glob {
	globCacheMu.Lock()
	defer globCacheMu.Unlock()
	if g, ok := globCache[pattern]; ok {
		return g
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		// An invalid pattern is cached as nil and never matches, rather than
		// failing the run.
		g = nil
	}
	globCache[pattern] = g
	return g
}

func matchAny(patterns []string, s string) bool {
	for _, p := range patterns {
		if g := compileGlob(p); g != nil && g.Match(s) {
			return true
		}
	}
	return false
}
