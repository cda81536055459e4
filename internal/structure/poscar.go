package structure

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Load parses a POSCAR-dialect structure file: comment, scale factor, three
// lattice vectors, element line, count line, optional selective-dynamics
// marker, coordinate mode, then one coordinate line per atom.
func Load(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lines := splitLines(string(data))
	if len(lines) < 8 {
		return nil, fmt.Errorf("parse %s: truncated structure file", path)
	}

	s := &Structure{Comment: strings.TrimSpace(lines[0])}
	scale, err := strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: scale factor: %w", path, err)
	}
	for i := 0; i < 3; i++ {
		fields := strings.Fields(lines[2+i])
		if len(fields) != 3 {
			return nil, fmt.Errorf("parse %s: lattice vector %d", path, i+1)
		}
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s: lattice vector %d: %w", path, i+1, err)
			}
			s.Lattice[i][j] = v * scale
		}
	}

	elements := strings.Fields(lines[5])
	counts := strings.Fields(lines[6])
	if len(elements) == 0 || len(elements) != len(counts) {
		return nil, fmt.Errorf("parse %s: element and count lines disagree", path)
	}

	cursor := 7
	mode := strings.TrimSpace(lines[cursor])
	if len(mode) > 0 && (mode[0] == 'S' || mode[0] == 's') {
		s.Selective = true
		cursor++
		if cursor >= len(lines) {
			return nil, fmt.Errorf("parse %s: missing coordinate mode", path)
		}
		mode = strings.TrimSpace(lines[cursor])
	}
	direct := len(mode) > 0 && (mode[0] == 'D' || mode[0] == 'd')
	cartesian := len(mode) > 0 && (mode[0] == 'C' || mode[0] == 'c' || mode[0] == 'K' || mode[0] == 'k')
	if !direct && !cartesian {
		return nil, fmt.Errorf("parse %s: unknown coordinate mode %q", path, mode)
	}
	cursor++

	for i, element := range elements {
		count, err := strconv.Atoi(counts[i])
		if err != nil || count < 1 {
			return nil, fmt.Errorf("parse %s: atom count for %s", path, element)
		}
		for k := 0; k < count; k++ {
			if cursor >= len(lines) {
				return nil, fmt.Errorf("parse %s: missing coordinates for %s", path, element)
			}
			atom, err := parseAtom(lines[cursor], element, s.Selective)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
			if direct {
				atom.Cart = s.Lattice.Cart(atom.Frac)
			} else {
				atom.Cart = atom.Frac
				frac, err := s.Lattice.Frac(atom.Cart)
				if err != nil {
					return nil, fmt.Errorf("parse %s: %w", path, err)
				}
				atom.Frac = frac
			}
			s.Atoms = append(s.Atoms, atom)
			cursor++
		}
	}
	return s, nil
}

func parseAtom(line, element string, selective bool) (Atom, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Atom{}, fmt.Errorf("coordinate line %q", line)
	}
	atom := Atom{Element: element, Selective: [3]bool{true, true, true}}
	for j := 0; j < 3; j++ {
		v, err := strconv.ParseFloat(fields[j], 64)
		if err != nil {
			return Atom{}, fmt.Errorf("coordinate line %q: %w", line, err)
		}
		atom.Frac[j] = v
	}
	if selective && len(fields) >= 6 {
		for j := 0; j < 3; j++ {
			atom.Selective[j] = strings.EqualFold(fields[3+j], "T")
		}
	}
	return atom, nil
}

// Write serializes the structure in direct coordinates, with a selective
// dynamics block when the structure carries one.
func (s *Structure) Write(path string) error {
	var b strings.Builder
	comment := s.Comment
	if comment == "" {
		comment = "vaspflow generated"
	}
	fmt.Fprintf(&b, "%s\n1.0\n", comment)
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, " %21.16f %21.16f %21.16f\n", s.Lattice[i][0], s.Lattice[i][1], s.Lattice[i][2])
	}
	species := s.Species()
	for _, sp := range species {
		fmt.Fprintf(&b, " %4s", sp.Element)
	}
	b.WriteString("\n")
	for _, sp := range species {
		fmt.Fprintf(&b, " %4d", sp.Count)
	}
	b.WriteString("\n")
	if s.Selective {
		b.WriteString("Selective dynamics\n")
	}
	b.WriteString("Direct\n")
	for _, atom := range s.Atoms {
		fmt.Fprintf(&b, " %19.16f %19.16f %19.16f", atom.Frac[0], atom.Frac[1], atom.Frac[2])
		if s.Selective {
			for j := 0; j < 3; j++ {
				b.WriteString(" " + tf(atom.Selective[j]))
			}
		}
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func tf(v bool) string {
	if v {
		return "T"
	}
	return "F"
}

func splitLines(data string) []string {
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
