package template

import (
	_ "embed"
	"os"
	"path/filepath"
)

//go:embed defaults/default.incar
var defaultParams string

//go:embed defaults/default.uvalue.yaml
var defaultUTable string

//go:embed defaults/default.submit
var defaultSubmit string

// Materialize writes the built-in default templates into dir unless files
// with the same names already exist, and returns the suffix-to-path map a
// Resolver expects.
func Materialize(dir string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	files := map[string]string{
		SuffixParams: defaultParams,
		SuffixUTable: defaultUTable,
		SuffixSubmit: defaultSubmit,
	}
	out := make(map[string]string, len(files))
	for suffix, content := range files {
		path := filepath.Join(dir, "default"+suffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return nil, err
			}
		}
		out[suffix] = path
	}
	return out, nil
}
