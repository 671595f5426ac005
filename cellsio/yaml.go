package cellsio

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// WriteYAML stores v as a YAML document, typically a chart spec next to
// its data.
func WriteYAML(v any, path string) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "cellsio: encode %s", path)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return eris.Wrapf(err, "cellsio: write %s", path)
	}
	return nil
}
