// Package params holds the simulation control-parameter model: an ordered,
// typed key/value set loaded from an INCAR-dialect template and mutated
// through explicit override steps before being written exactly once.
package params

import (
	"fmt"
	"os"
	"strings"
)

// Set is an ordered parameter collection. Overriding an existing key keeps
// its position; new keys append. Deleting an absent key is a no-op.
type Set struct {
	keys   []string
	values map[string]Value
}

// NewSet returns an empty parameter set.
func NewSet() *Set {
	return &Set{values: make(map[string]Value)}
}

// Load parses a flat KEY = VALUE file. '#' and '!' start comments; values
// with several tokens become per-element lists. Scalar typing is inferred
// from the template text.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := NewSet()
	for n, raw := range strings.Split(string(data), "\n") {
		line := raw
		if i := strings.IndexAny(line, "#!"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("parse %s: line %d: missing '='", path, n+1)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("parse %s: line %d: empty key", path, n+1)
		}
		set.Set(key, ParseTokens(strings.Fields(value)))
	}
	return set, nil
}

// Get returns the value for key.
func (s *Set) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// GetOr returns the value for key, or def when absent.
func (s *Set) GetOr(key string, def Value) Value {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (s *Set) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Set stores value under key. A later Set always wins.
func (s *Set) Set(key string, value Value) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Delete removes key if present. Absent keys are ignored.
func (s *Set) Delete(key string) {
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in template-plus-append order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of stored keys.
func (s *Set) Len() int {
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *Set) Clone() *Set {
	out := NewSet()
	for _, key := range s.keys {
		out.Set(key, s.values[key])
	}
	return out
}

// Render serializes the set in its current order.
func (s *Set) Render() string {
	var b strings.Builder
	for _, key := range s.keys {
		fmt.Fprintf(&b, "%s = %s\n", key, s.values[key].Format())
	}
	return b.String()
}

// Write serializes the set to path, overwriting any previous artifact.
func (s *Set) Write(path string) error {
	return os.WriteFile(path, []byte(s.Render()), 0o644)
}
