package params_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaspflow/internal/params"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.incar")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func TestLoadInfersTypesFromTemplate(t *testing.T) {
	path := writeTemplate(t, strings.Join([]string{
		"ENCUT = 450.0",
		"NSW = 500",
		"LWAVE = .FALSE.",
		"ALGO = Fast  # electronic minimiser",
		"LDAUU = 4.0 0.0",
		"",
	}, "\n"))

	set, err := params.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := set.GetOr("ENCUT", params.Value{}); got.Kind() != params.KindFloat || got.Float() != 450 {
		t.Fatalf("ENCUT parsed as %v kind %d", got.Format(), got.Kind())
	}
	if got := set.GetOr("NSW", params.Value{}); got.Kind() != params.KindInt || got.Int() != 500 {
		t.Fatalf("NSW parsed as %v", got.Format())
	}
	if got := set.GetOr("LWAVE", params.Value{}); got.Kind() != params.KindBool || got.Bool() {
		t.Fatalf("LWAVE parsed as %v", got.Format())
	}
	if got := set.GetOr("ALGO", params.Value{}); got.Format() != "Fast" {
		t.Fatalf("ALGO parsed as %q, comment not stripped?", got.Format())
	}
	if got := set.GetOr("LDAUU", params.Value{}); got.Kind() != params.KindList || len(got.List()) != 2 {
		t.Fatalf("LDAUU parsed as %v", got.Format())
	}
}

func TestSetKeepsPositionAndAppendsNewKeys(t *testing.T) {
	path := writeTemplate(t, "A = 1\nB = 2\nC = 3\n")
	set, err := params.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	set.Set("B", params.Int(20))
	set.Set("D", params.Int(4))

	want := []string{"A", "B", "C", "D"}
	got := set.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys %v, want %v", got, want)
		}
	}
	if v, _ := set.Get("B"); v.Int() != 20 {
		t.Fatalf("later write did not win: B = %s", v.Format())
	}
}

func TestDeleteAbsentKeyIsNoOp(t *testing.T) {
	path := writeTemplate(t, "A = 1\n")
	set, err := params.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	set.Delete("LAECHG")
	set.Delete("LAECHG")
	if set.Len() != 1 {
		t.Fatalf("unexpected key count %d", set.Len())
	}

	set.Delete("A")
	if set.Has("A") {
		t.Fatal("A still present after delete")
	}
	set.Delete("A")
}

func TestRenderRoundTrip(t *testing.T) {
	path := writeTemplate(t, "ENCUT = 450.0\nLCHARG = .TRUE.\nLDAUL = 2 -1\n")
	set, err := params.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "INCAR")
	if err := set.Write(out); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	again, err := params.Load(out)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if again.Render() != set.Render() {
		t.Fatalf("round trip drifted:\n%s\nvs\n%s", set.Render(), again.Render())
	}
	if !strings.Contains(set.Render(), "LCHARG = .TRUE.") {
		t.Fatalf("boolean not rendered in artifact dialect:\n%s", set.Render())
	}
}
