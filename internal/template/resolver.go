// Package template locates override templates by suffix along an explicit,
// ordered search path and materializes built-in defaults on first use.
package template

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Well-known template suffixes.
const (
	SuffixParams = ".incar"
	SuffixUTable = ".uvalue.yaml"
	SuffixSubmit = ".submit"
)

// Resolver finds the first file matching a suffix along its search path,
// falling back to per-suffix defaults. Read-only; resolution never creates
// files.
type Resolver struct {
	searchPath []string
	defaults   map[string]string
}

// NewResolver builds a resolver over the given ordered directory list.
// defaults maps suffix to the fallback path used when no directory matches.
func NewResolver(searchPath []string, defaults map[string]string) *Resolver {
	r := &Resolver{defaults: make(map[string]string, len(defaults))}
	r.searchPath = append(r.searchPath, searchPath...)
	for k, v := range defaults {
		r.defaults[k] = v
	}
	return r
}

// AncestorChain returns dir followed by each of its ancestors up to the
// filesystem root.
func AncestorChain(dir string) []string {
	dir = filepath.Clean(dir)
	var out []string
	for {
		out = append(out, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}
		dir = parent
	}
}

// Resolve returns the first file along the search path whose name ends with
// suffix. Directories that cannot be read are skipped. When nothing
// matches, the registered default path is returned (empty if none).
func (r *Resolver) Resolve(suffix string) string {
	for _, dir := range r.searchPath {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.HasSuffix(entry.Name(), suffix) {
				names = append(names, entry.Name())
			}
		}
		if len(names) > 0 {
			sort.Strings(names)
			return filepath.Join(dir, names[0])
		}
	}
	return r.defaults[suffix]
}
