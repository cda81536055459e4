// Package outcar reads completed-run output files. Only the handful of
// quantities the monitor needs are scraped; full log parsing stays with the
// simulation engine's own tooling.
package outcar

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Summary holds the last-reported quantities from one run log.
type Summary struct {
	LastEnergy  float64
	LastTangent float64
	HasEnergy   bool
	HasTangent  bool
}

// Read scans a run log for the final free energy and reaction-coordinate
// tangent. Energies come from "energy(sigma->0)" lines, tangents from
// "NEB: projections" lines; the last occurrence of each wins.
func Read(path string) (Summary, error) {
	file, err := os.Open(path)
	if err != nil {
		return Summary{}, err
	}
	defer file.Close()

	var summary Summary
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "energy(sigma->0)"):
			if v, ok := lastFloat(line); ok {
				summary.LastEnergy = v
				summary.HasEnergy = true
			}
		case strings.Contains(line, "NEB: projections"):
			if v, ok := lastFloat(line); ok {
				summary.LastTangent = v
				summary.HasTangent = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Summary{}, fmt.Errorf("scan %s: %w", path, err)
	}
	return summary, nil
}

func lastFloat(line string) (float64, bool) {
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(fields[i], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
