package calc

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"vaspflow/internal/params"
)

// UEntry is one element's localized-correction triple.
type UEntry struct {
	Orbital int     `yaml:"orbital"`
	U       float64 `yaml:"U"`
	J       float64 `yaml:"J"`
}

// UTable maps "Element <symbol>" keys to correction entries.
type UTable map[string]UEntry

// LoadUTable parses the YAML correction table at path.
func LoadUTable(path string) (UTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table := make(UTable)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return table, nil
}

// Lookup returns the entry for an element and whether it was present.
func (t UTable) Lookup(element string) (UEntry, bool) {
	entry, ok := t["Element "+element]
	return entry, ok
}

// injectCorrections fills the per-element LDAUL/LDAUU/LDAUJ lists from the
// table when the template enables LDAU. Elements missing from the table are
// warned about and given the neutral defaults (-1, 0, 0). LMAXMIX follows
// the highest injected orbital.
func injectCorrections(set *params.Set, table UTable, elements []string, log *slog.Logger) {
	if !set.GetOr("LDAU", params.Bool(false)).Bool() {
		return
	}
	orbitals := make([]params.Value, len(elements))
	us := make([]params.Value, len(elements))
	js := make([]params.Value, len(elements))
	hasF := false
	for i, element := range elements {
		entry, ok := table.Lookup(element)
		if !ok {
			entry = UEntry{Orbital: -1}
			log.Warn("element missing from correction table, using neutral defaults",
				"element", element, "orbital", -1, "U", 0.0, "J", 0.0)
		}
		if entry.Orbital == 3 {
			hasF = true
		}
		orbitals[i] = params.Int(int64(entry.Orbital))
		us[i] = params.Float(entry.U)
		js[i] = params.Float(entry.J)
	}
	set.Set("LDAUL", params.List(orbitals...))
	set.Set("LDAUU", params.List(us...))
	set.Set("LDAUJ", params.List(js...))
	if hasF {
		set.Set("LMAXMIX", params.Int(6))
	} else {
		set.Set("LMAXMIX", params.Int(4))
	}
}

// stripCorrections removes every localized-correction key; the hybrid
// functional and the correction injection are mutually exclusive.
func stripCorrections(set *params.Set) {
	for _, key := range []string{"LDAU", "LDAUTYPE", "LDAUL", "LDAUU", "LDAUJ", "LDAUPRINT", "LMAXMIX"} {
		set.Delete(key)
	}
}
