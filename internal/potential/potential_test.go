package potential_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaspflow/internal/potential"
	"vaspflow/internal/testsupport"
)

func TestConcatExpandsSinglePotentialSet(t *testing.T) {
	potdir := t.TempDir()
	testsupport.WritePotential(t, potdir, "PAW_PBE", "Ti", 12)
	testsupport.WritePotential(t, potdir, "PAW_PBE", "O", 6)

	file, err := potential.Concat(potdir, []string{"PAW_PBE"}, []string{"Ti", "O"})
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if len(file.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(file.Entries))
	}
	valences := file.Valences()
	if valences[0] != 12 || valences[1] != 6 {
		t.Fatalf("valences = %v", valences)
	}
	total, err := file.TotalElectrons([]int{1, 2})
	if err != nil {
		t.Fatalf("TotalElectrons: %v", err)
	}
	if total != 24 {
		t.Fatalf("total electrons = %v, want 24", total)
	}
}

func TestConcatPerElementSets(t *testing.T) {
	potdir := t.TempDir()
	testsupport.WritePotential(t, potdir, "PAW_PBE", "Ti", 12)
	testsupport.WritePotential(t, potdir, "PAW_LDA", "O", 6)

	file, err := potential.Concat(potdir, []string{"PAW_PBE", "PAW_LDA"}, []string{"Ti", "O"})
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if file.Entries[1].Potential != "PAW_LDA" {
		t.Fatalf("entry = %+v", file.Entries[1])
	}
}

func TestConcatRejectsCountMismatch(t *testing.T) {
	if _, err := potential.Concat(t.TempDir(), []string{"a", "b"}, []string{"Ti", "O", "H"}); err == nil {
		t.Fatal("mismatched potentials accepted")
	}
	if _, err := potential.Concat(t.TempDir(), nil, []string{"Ti"}); err == nil {
		t.Fatal("empty potential list accepted")
	}
}

func TestConcatMissingElement(t *testing.T) {
	potdir := t.TempDir()
	testsupport.WritePotential(t, potdir, "PAW_PBE", "Ti", 12)
	if _, err := potential.Concat(potdir, []string{"PAW_PBE"}, []string{"Ti", "O"}); err == nil {
		t.Fatal("missing element block accepted")
	}
}

func TestWriteConcatenatesBlocksInOrder(t *testing.T) {
	potdir := t.TempDir()
	testsupport.WritePotential(t, potdir, "PAW_PBE", "Ti", 12)
	testsupport.WritePotential(t, potdir, "PAW_PBE", "O", 6)

	file, err := potential.Concat(potdir, []string{"PAW_PBE"}, []string{"Ti", "O"})
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	out := filepath.Join(t.TempDir(), "POTCAR")
	if err := file.Write(out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	body, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	ti := strings.Index(string(body), "PAW Ti")
	o := strings.Index(string(body), "PAW O")
	if ti < 0 || o < 0 || ti > o {
		t.Fatalf("blocks out of order:\n%s", body)
	}
}
