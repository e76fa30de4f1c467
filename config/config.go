package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/treefs-io/treefs/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultOwnerUID uint32 = 0
	DefaultOwnerGID uint32 = 55

	// Read-only tree: owner+group read, no write bits
	DefaultDirPerm  uint32 = 0o550
	DefaultFilePerm uint32 = 0o440

	// DefaultBlockSize is the preferred block size reported in node attributes
	DefaultBlockSize uint32 = 512
)

// Config contains runtime configuration values for the in-memory filesystem tree.
// All nodes are stamped with the owner and permission values at creation time;
// they never change afterwards.
type Config struct {
	OwnerUID  uint32        // Owner uid stamped on every node (Default 0)
	OwnerGID  uint32        // Owner gid stamped on every node (Default 55)
	DirPerm   uint32        // Permission bits for directories (Default 0o550)
	FilePerm  uint32        // Permission bits for files (Default 0o440)
	BlockSize uint32        // Preferred block size reported in attributes (Default 512)
	LogLvl    util.LogLevel // Log verbosity (Default InfoLevel)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	OwnerUID  *uint32        `yaml:"owner_uid,omitempty" json:"owner_uid,omitempty"`
	OwnerGID  *uint32        `yaml:"owner_gid,omitempty" json:"owner_gid,omitempty"`
	DirPerm   *uint32        `yaml:"dir_perm,omitempty" json:"dir_perm,omitempty"`
	FilePerm  *uint32        `yaml:"file_perm,omitempty" json:"file_perm,omitempty"`
	BlockSize *uint32        `yaml:"block_size,omitempty" json:"block_size,omitempty"`
	LogLvl    *util.LogLevel `yaml:"log_lvl,omitempty" json:"log_lvl,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		OwnerUID:  DefaultOwnerUID,
		OwnerGID:  DefaultOwnerGID,
		DirPerm:   DefaultDirPerm,
		FilePerm:  DefaultFilePerm,
		BlockSize: DefaultBlockSize,
		LogLvl:    util.InfoLevel,
	}
}

// NewConfig creates a Config from defaults with the given override applied.
// A nil override returns the plain defaults.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.OwnerUID != nil {
		c.OwnerUID = *override.OwnerUID
	}
	if override.OwnerGID != nil {
		c.OwnerGID = *override.OwnerGID
	}
	if override.DirPerm != nil {
		c.DirPerm = *override.DirPerm
	}
	if override.FilePerm != nil {
		c.FilePerm = *override.FilePerm
	}
	if override.BlockSize != nil {
		c.BlockSize = *override.BlockSize
	}
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
