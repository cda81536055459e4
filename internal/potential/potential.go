// Package potential assembles the pseudopotential artifact by concatenating
// per-element blocks from the configured potential database, and records the
// electron valence each block declares.
package potential

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Entry records one element's block metadata.
type Entry struct {
	Element   string
	Potential string
	Valence   float64
}

// File is an assembled pseudopotential artifact.
type File struct {
	Entries []Entry
	blocks  []string
}

// Concat reads potdir/<potential>/<element>/POTCAR for each element, in
// element order. potentials holds either one name applied to every element
// or one name per element.
func Concat(potdir string, potentials []string, elements []string) (*File, error) {
	if len(potentials) == 0 {
		return nil, fmt.Errorf("potential: no potential set named")
	}
	if len(potentials) == 1 && len(elements) > 1 {
		expanded := make([]string, len(elements))
		for i := range expanded {
			expanded[i] = potentials[0]
		}
		potentials = expanded
	}
	if len(potentials) != len(elements) {
		return nil, fmt.Errorf("potential: %d potentials for %d elements", len(potentials), len(elements))
	}

	out := &File{}
	for i, element := range elements {
		path := filepath.Join(potdir, potentials[i], element, "POTCAR")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("potential: element %s: %w", element, err)
		}
		valence, err := scrapeValence(string(data))
		if err != nil {
			return nil, fmt.Errorf("potential: element %s: %w", element, err)
		}
		out.Entries = append(out.Entries, Entry{Element: element, Potential: potentials[i], Valence: valence})
		out.blocks = append(out.blocks, string(data))
	}
	return out, nil
}

// scrapeValence pulls the declared electron count from a block's
// "POMASS = m; ZVAL = z" line.
func scrapeValence(block string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(block))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "ZVAL")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("ZVAL"):]
		rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "="))
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		return v, nil
	}
	return 0, fmt.Errorf("no ZVAL entry in potential block")
}

// Valences returns the per-element valence in element order.
func (f *File) Valences() []float64 {
	out := make([]float64, len(f.Entries))
	for i, e := range f.Entries {
		out[i] = e.Valence
	}
	return out
}

// TotalElectrons sums valence times atom count over the element order shared
// with counts.
func (f *File) TotalElectrons(counts []int) (float64, error) {
	if len(counts) != len(f.Entries) {
		return 0, fmt.Errorf("potential: %d counts for %d entries", len(counts), len(f.Entries))
	}
	total := 0.0
	for i, e := range f.Entries {
		total += e.Valence * float64(counts[i])
	}
	return total, nil
}

// Write concatenates the blocks to path.
func (f *File) Write(path string) error {
	return os.WriteFile(path, []byte(strings.Join(f.blocks, "")), 0o644)
}
