// Package catalog reads species catalog import files.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgo/menagerie/internal/model"
)

// FileYAML is the import file layout:
//
//	catalog: pokemon
//	species:
//	  - name: Bulbasaur
//	    number: 1
//	    type_primary: Grass
type FileYAML struct {
	Catalog string               `yaml:"catalog,omitempty"`
	Species []model.SpeciesInput `yaml:"species"`
}

// Import is a parsed catalog file
type Import struct {
	Catalog model.Catalog
	Species []*model.SpeciesInput
}

// LoadYAML loads a catalog file. want, when non-empty, must agree with the
// catalog named in the file; a file without one takes want.
func LoadYAML(path string, want model.Catalog) (*Import, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseYAML(data, want)
}

// ParseYAML parses a catalog file. Unknown keys are rejected and every
// entry needs a name.
func ParseYAML(data []byte, want model.Catalog) (*Import, error) {
	var f FileYAML
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	c := want
	if f.Catalog != "" {
		named, err := model.ParseCatalog(f.Catalog)
		if err != nil {
			return nil, err
		}
		if want != "" && named != want {
			return nil, fmt.Errorf("file is for catalog %s, not %s", named, want)
		}
		c = named
	}
	if c == "" {
		return nil, errors.New("no catalog given and the file names none")
	}

	out := &Import{Catalog: c, Species: make([]*model.SpeciesInput, 0, len(f.Species))}
	for i := range f.Species {
		in := &f.Species[i]
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("species %d: name is required", i)
		}
		out.Species = append(out.Species, in)
	}
	return out, nil
}
