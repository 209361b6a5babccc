package config

import (
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/assetgen/internal/fsutil"
)

// SaveTo writes the config as YAML to path, creating parent directories.
// The result loads back through -config.
func (c *Config) SaveTo(path string) error {
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0644)
}
