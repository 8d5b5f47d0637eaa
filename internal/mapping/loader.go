package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects a mapping document syntax.
type Format int

const (
	FormatText Format = iota
	FormatYAML
)

// FormatForPath picks the syntax from a file extension; anything that is not
// YAML is read as text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// LoadFile loads and parses a mapping file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file %s: %w", path, err)
	}

	return Parse(path, data, FormatForPath(path))
}

// LoadFiles loads several documents in order. The order is significant:
// later documents override earlier ones when tables are built.
func LoadFiles(paths ...string) ([]*File, error) {
	files := make([]*File, 0, len(paths))

	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	return files, nil
}

// Parse parses data in the given format. name is recorded on the File and
// used in error positions.
func Parse(name string, data []byte, format Format) (*File, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(name, data)
	default:
		return ParseText(name, data)
	}
}

// ParseYAML parses YAML data into a File.
func ParseYAML(name string, data []byte) (*File, error) {
	var yf yamlFile

	err := yaml.Unmarshal(data, &yf)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse mapping YAML %s: %w", ErrMalformed, name, err)
	}

	// Apply defaults and normalize
	applyDefaults(&yf)

	f := &File{Name: name, Version: yf.Version}
	for i := range yf.Classes {
		f.Classes = append(f.Classes, yf.Classes[i].toDecl())
	}

	return f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(yf *yamlFile) {
	if yf.Version == "" {
		yf.Version = "1"
	}
}

// Marshal serializes a File to the YAML format.
func Marshal(f *File) ([]byte, error) {
	yf := yamlFile{Version: f.Version}
	if yf.Version == "" {
		yf.Version = "1"
	}

	for i := range f.Classes {
		yf.Classes = append(yf.Classes, fromDecl(&f.Classes[i]))
	}

	return yaml.Marshal(&yf)
}

// WriteFile writes a File to the given path as YAML.
func WriteFile(f *File, path string) error {
	data, err := Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file %s: %w", path, err)
	}

	return nil
}
