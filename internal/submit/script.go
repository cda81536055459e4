// Package submit models the scheduler submission script as an ordered
// sequence of named fragments. Assembly and chaining mutate the sequence;
// fragment bodies are never patched after creation.
package submit

import (
	"fmt"
	"os"
	"strings"
)

// Well-known fragment names.
const (
	FragmentHeader      = "header"
	FragmentEnvironment = "environment"
	FragmentRun         = "run"
	FragmentCheck       = "check"
	FragmentFinish      = "finish"
)

// Fragment is one named block of script text.
type Fragment struct {
	Name string
	Body string
}

// Script is an ordered fragment sequence.
type Script struct {
	fragments []Fragment
}

// New builds a script from fragments in order.
func New(fragments ...Fragment) *Script {
	s := &Script{}
	s.Append(fragments...)
	return s
}

// Append adds fragments to the end of the sequence.
func (s *Script) Append(fragments ...Fragment) {
	s.fragments = append(s.fragments, fragments...)
}

// RemoveTerminal drops the last fragment when it carries the given name and
// reports whether a fragment was removed.
func (s *Script) RemoveTerminal(name string) bool {
	n := len(s.fragments)
	if n == 0 || s.fragments[n-1].Name != name {
		return false
	}
	s.fragments = s.fragments[:n-1]
	return true
}

// Names returns the fragment names in order.
func (s *Script) Names() []string {
	out := make([]string, len(s.fragments))
	for i, f := range s.fragments {
		out[i] = f.Name
	}
	return out
}

// Count returns how many fragments carry the given name.
func (s *Script) Count(name string) int {
	n := 0
	for _, f := range s.fragments {
		if f.Name == name {
			n++
		}
	}
	return n
}

// Render concatenates the fragment bodies.
func (s *Script) Render() string {
	var b strings.Builder
	for _, f := range s.fragments {
		body := strings.TrimRight(f.Body, "\n")
		if body == "" {
			continue
		}
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

// Write serializes the script executable to path.
func (s *Script) Write(path string) error {
	return os.WriteFile(path, []byte(s.Render()), 0o755)
}

// ParseTemplate splits scheduler template text into fragments. Blocks are
// introduced by lines of the form "#@ <name>"; text before the first marker
// is rejected.
func ParseTemplate(text string) ([]Fragment, error) {
	var out []Fragment
	current := -1
	for n, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#@") {
			name := strings.TrimSpace(strings.TrimPrefix(trimmed, "#@"))
			if name == "" {
				return nil, fmt.Errorf("submit template: line %d: unnamed fragment", n+1)
			}
			out = append(out, Fragment{Name: name})
			current = len(out) - 1
			continue
		}
		if current < 0 {
			if trimmed == "" {
				continue
			}
			return nil, fmt.Errorf("submit template: line %d: text before first fragment marker", n+1)
		}
		if out[current].Body != "" {
			out[current].Body += "\n"
		}
		out[current].Body += line
	}
	return out, nil
}

// TemplateFragment returns the named fragment from a parsed template.
func TemplateFragment(fragments []Fragment, name string) (Fragment, bool) {
	for _, f := range fragments {
		if f.Name == name {
			return f, true
		}
	}
	return Fragment{}, false
}
