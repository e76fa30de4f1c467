// Package requests loads node definition files and applies them to a tree.
package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treefs-io/treefs"
)

// GetNodeType extracts the node type from a raw JSON definition without full
// unmarshaling.
func GetNodeType(data []byte) (treefs.NodeType, error) {
	var meta struct {
		Type treefs.NodeType `json:"type"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	return meta.Type, nil
}

// UnmarshalDefs parses a list of node definitions from YAML or JSON.
func UnmarshalDefs(data []byte, format string) ([]treefs.NodeDef, error) {
	var defs []treefs.NodeDef
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal node defs: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal node defs: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown node def format: %s", format)
	}

	for i, def := range defs {
		if def.Path == "" {
			return nil, fmt.Errorf("node def %d: empty path", i)
		}
		switch def.Type {
		case treefs.FileNodeType, treefs.DirNodeType:
		default:
			return nil, fmt.Errorf("node def %q: unknown type %q", def.Path, def.Type)
		}
	}
	return defs, nil
}

// LoadDefsFile loads node definitions from a file, determining the format by
// file extension (.yaml, .yml, or .json).
func LoadDefsFile(path string) ([]treefs.NodeDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("unknown node def file extension: %s", path)
	}
	return UnmarshalDefs(data, ext)
}
