package state

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DecodeYAML reads a YAML mapping into a State. Nested mappings decode to
// State values so they can be read back with the same helpers.
func DecodeYAML(r io.Reader) (State, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return State{}, nil
		}
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return normalize(raw), nil
}

// LoadYAML reads a State from a YAML file.
func LoadYAML(path string) (State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}
	defer f.Close()
	return DecodeYAML(f)
}

func normalize(raw map[string]any) State {
	out := make(State, len(raw))
	for key, value := range raw {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return normalize(v)
	case []any:
		for i := range v {
			v[i] = normalizeValue(v[i])
		}
		return v
	default:
		return v
	}
}
