package exercise

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile reads an exercise from a .toml or .json file.
func LoadFile(path string) (*Exercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ex, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ex, nil
}

// Parse decodes data in the format named by ext (".toml" or ".json").
func Parse(ext string, data []byte) (*Exercise, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return ParseJSON(data)
	case ".toml":
		return ParseTOML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ParseTOML decodes a TOML exercise definition.
func ParseTOML(data []byte) (*Exercise, error) {
	var ex Exercise
	if err := toml.Unmarshal(data, &ex); err != nil {
		return nil, err
	}
	if err := validateID(ex.ID); err != nil {
		return nil, err
	}
	ex.decode()
	return &ex, nil
}

// isExerciseFile reports whether path has a loadable extension.
func isExerciseFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".json":
		return true
	}
	return false
}
