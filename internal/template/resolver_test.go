package template_test

import (
	"os"
	"path/filepath"
	"testing"

	"vaspflow/internal/template"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolvePrefersEarlierDirectories(t *testing.T) {
	near := t.TempDir()
	far := t.TempDir()
	want := write(t, near, "surface.incar", "ENCUT = 500\n")
	write(t, far, "bulk.incar", "ENCUT = 400\n")

	r := template.NewResolver([]string{near, far}, nil)
	if got := r.Resolve(template.SuffixParams); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveSortsWithinDirectory(t *testing.T) {
	dir := t.TempDir()
	want := write(t, dir, "a.incar", "")
	write(t, dir, "b.incar", "")

	r := template.NewResolver([]string{dir}, nil)
	if got := r.Resolve(template.SuffixParams); got != want {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveSkipsMissingDirectoriesAndFallsBack(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	fallback := "/defaults/default.incar"
	r := template.NewResolver([]string{missing}, map[string]string{
		template.SuffixParams: fallback,
	})
	if got := r.Resolve(template.SuffixParams); got != fallback {
		t.Fatalf("Resolve = %q, want fallback %q", got, fallback)
	}
	if got := r.Resolve(template.SuffixSubmit); got != "" {
		t.Fatalf("unregistered suffix resolved to %q", got)
	}
}

func TestAncestorChainEndsAtRoot(t *testing.T) {
	chain := template.AncestorChain(filepath.Join(string(filepath.Separator), "a", "b", "c"))
	if len(chain) != 4 {
		t.Fatalf("chain = %v", chain)
	}
	if chain[0] != filepath.Join(string(filepath.Separator), "a", "b", "c") {
		t.Fatalf("chain starts at %q", chain[0])
	}
	if chain[3] != string(filepath.Separator) {
		t.Fatalf("chain ends at %q", chain[3])
	}
}

func TestMaterializeIsIdempotentAndKeepsEdits(t *testing.T) {
	dir := t.TempDir()
	paths, err := template.Materialize(dir)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for _, suffix := range []string{template.SuffixParams, template.SuffixUTable, template.SuffixSubmit} {
		path, ok := paths[suffix]
		if !ok {
			t.Fatalf("no path for %s", suffix)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
	}

	edited := paths[template.SuffixParams]
	if err := os.WriteFile(edited, []byte("ENCUT = 999\n"), 0o644); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := template.Materialize(dir); err != nil {
		t.Fatalf("second Materialize: %v", err)
	}
	body, err := os.ReadFile(edited)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "ENCUT = 999\n" {
		t.Fatalf("edit clobbered: %q", body)
	}
}
