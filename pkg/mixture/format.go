package mixture

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/granulab/spherepack/pkg/errors"
)

// Format reads mixture descriptors from a serialized document.
type Format interface {
	// Parse reads a mixture from r. The result is not validated.
	Parse(r io.Reader) (Mixture, error)
	// Supports reports whether this format handles the given filename.
	Supports(filename string) bool
	// Name returns the format identifier (e.g., "json", "toml").
	Name() string
}

// Formats returns the built-in formats in detection order.
func Formats() []Format {
	return []Format{JSON{}, TOML{}, YAML{}}
}

// Detect finds a format that supports the given file path.
func Detect(path string) (Format, error) {
	name := filepath.Base(path)
	for _, f := range Formats() {
		if f.Supports(name) {
			return f, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported mixture format: %s", name)
}

// Load reads, parses, and validates the mixture file at path. The format
// is chosen by file extension.
func Load(path string) (Mixture, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := Detect(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "mixture file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "mixture file %s", path)
	}
	return decode(f, data, path)
}

// Decode parses and validates mixture bytes, choosing the format from the
// given name (a filename or URL path). Used for fetched documents where
// no local file exists.
func Decode(name string, data []byte) (Mixture, error) {
	f, err := Detect(name)
	if err != nil {
		return nil, err
	}
	return decode(f, data, name)
}

func decode(f Format, data []byte, name string) (Mixture, error) {
	m, err := f.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing %s as %s", name, f.Name())
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// =============================================================================
// JSON
// =============================================================================

// JSON parses the wire format: an array of component objects,
// [{"name": "coarse", "radius": 2.0, "proportion": 30}, ...].
type JSON struct{}

// Name returns "json".
func (JSON) Name() string { return "json" }

// Supports reports whether the filename has a .json extension.
func (JSON) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".json")
}

// Parse decodes a JSON component array.
func (JSON) Parse(r io.Reader) (Mixture, error) {
	var m Mixture
	dec := json.NewDecoder(r)
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// =============================================================================
// TOML
// =============================================================================

// TOML parses mixtures written as [[component]] tables.
type TOML struct{}

// Name returns "toml".
func (TOML) Name() string { return "toml" }

// Supports reports whether the filename has a .toml extension.
func (TOML) Supports(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".toml")
}

type tomlFile struct {
	Component []Component `toml:"component"`
}

// Parse decodes a TOML mixture document.
func (TOML) Parse(r io.Reader) (Mixture, error) {
	var f tomlFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return Mixture(f.Component), nil
}

// =============================================================================
// YAML
// =============================================================================

// YAML parses mixtures written as a list of component mappings.
type YAML struct{}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }

// Supports reports whether the filename has a .yaml or .yml extension.
func (YAML) Supports(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

// Parse decodes a YAML component list.
func (YAML) Parse(r io.Reader) (Mixture, error) {
	var m Mixture
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
