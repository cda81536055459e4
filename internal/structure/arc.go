package structure

import (
	"fmt"
	"os"
	"strings"
)

// WriteARC serializes a trajectory of structures into a BIOSYM archive file
// so optimization or reaction paths can be animated. All frames are written
// under the first frame's cell parameters.
func WriteARC(path string, frames []*Structure) error {
	if len(frames) == 0 {
		return fmt.Errorf("write %s: no frames", path)
	}
	lengths := frames[0].Lattice.Lengths()
	angles := frames[0].Lattice.Angles()

	var b strings.Builder
	b.WriteString("!BIOSYM archive 2\nPBC=ON\n")
	for _, frame := range frames {
		b.WriteString("Auto Generated CAR File\n!DATE\n")
		fmt.Fprintf(&b, "PBC %11.5f %11.5f %11.5f %11.5f %11.5f %11.5f\n",
			lengths[0], lengths[1], lengths[2], angles[0], angles[1], angles[2])
		for i, atom := range frame.Atoms {
			fmt.Fprintf(&b, "%-4s %14.8f %14.8f %14.8f CORE %4d %-2s %-2s %8.4f %4d\n",
				atom.Element, atom.Cart[0], atom.Cart[1], atom.Cart[2],
				i+1, atom.Element, atom.Element, 0.0, i+1)
		}
		b.WriteString("end\nend\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
