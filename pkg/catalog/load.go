package catalog

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/prefixtower/pkg/errors"
)

// Format identifies a catalog file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// file is the on-disk catalog layout shared by both encodings.
type file struct {
	Name    string   `toml:"name" yaml:"name"`
	Roles   Roles    `toml:"roles" yaml:"roles"`
	Modules []Module `toml:"module" yaml:"modules"`
}

// Parse decodes a catalog from data in the given format.
func Parse(data []byte, format Format) (*Catalog, error) {
	var f file
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "decode toml catalog")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalog, err, "decode yaml catalog")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported catalog format %q", format)
	}
	return New(f.Name, f.Roles, f.Modules...)
}

// FormatFromPath infers the catalog format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer catalog format from %q", path)
}

// Load reads a catalog file. The format follows the file extension.
func Load(path string) (*Catalog, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalog, err, "read catalog %s", path)
	}
	return Parse(data, format)
}

//go:embed adder.toml
var adderTOML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in parallel-prefix adder catalog.
// It panics if the embedded definition is malformed, which tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(adderTOML, FormatTOML)
		if err != nil {
			panic("catalog: embedded adder catalog: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// DefaultSource returns the embedded TOML text of the default catalog.
func DefaultSource() []byte {
	return bytes.Clone(adderTOML)
}
