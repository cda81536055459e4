package submit_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaspflow/internal/submit"
)

const sampleTemplate = `#@ header
#!/bin/bash
#SBATCH -N 1

#@ run
mpirun vasp_std

#@ finish
echo done
`

func TestParseTemplateSplitsNamedFragments(t *testing.T) {
	fragments, err := submit.ParseTemplate(sampleTemplate)
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	if len(fragments) != 3 {
		t.Fatalf("fragments = %d, want 3", len(fragments))
	}
	header, ok := submit.TemplateFragment(fragments, submit.FragmentHeader)
	if !ok {
		t.Fatal("header fragment missing")
	}
	if !strings.Contains(header.Body, "#SBATCH -N 1") {
		t.Fatalf("header body = %q", header.Body)
	}
	if _, ok := submit.TemplateFragment(fragments, "absent"); ok {
		t.Fatal("absent fragment found")
	}
}

func TestParseTemplateRejectsLeadingText(t *testing.T) {
	if _, err := submit.ParseTemplate("echo stray\n#@ header\n"); err == nil {
		t.Fatal("leading text accepted")
	}
	if _, err := submit.ParseTemplate("#@\nbody\n"); err == nil {
		t.Fatal("unnamed fragment accepted")
	}
}

func TestRemoveTerminalOnlyDropsMatchingTail(t *testing.T) {
	s := submit.New(
		submit.Fragment{Name: submit.FragmentHeader, Body: "#!/bin/bash"},
		submit.Fragment{Name: submit.FragmentFinish, Body: "echo done"},
	)
	if s.RemoveTerminal(submit.FragmentRun) {
		t.Fatal("removed a fragment that was not terminal")
	}
	if !s.RemoveTerminal(submit.FragmentFinish) {
		t.Fatal("terminal finish not removed")
	}
	if s.Count(submit.FragmentFinish) != 0 {
		t.Fatalf("finish count = %d", s.Count(submit.FragmentFinish))
	}
	if got := s.Names(); len(got) != 1 || got[0] != submit.FragmentHeader {
		t.Fatalf("names = %v", got)
	}
}

func TestRenderSkipsEmptyBodiesAndNormalizesNewlines(t *testing.T) {
	s := submit.New(
		submit.Fragment{Name: submit.FragmentHeader, Body: "#!/bin/bash\n\n"},
		submit.Fragment{Name: "blank"},
		submit.Fragment{Name: submit.FragmentRun, Body: "mpirun vasp_std"},
	)
	want := "#!/bin/bash\nmpirun vasp_std\n"
	if got := s.Render(); got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestWriteProducesExecutableScript(t *testing.T) {
	s := submit.New(submit.Fragment{Name: submit.FragmentHeader, Body: "#!/bin/bash"})
	path := filepath.Join(t.TempDir(), "submit.script")
	if err := s.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("script not executable: %v", info.Mode())
	}
}
