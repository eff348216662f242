// Package config persists the node-side storage configuration: the shard
// path currently in use and the candidate roots a new shard may be placed
// under, each tagged with the host free space observed when it was added.
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sisatech/toml"
)

// FileName is the name of the configuration file.
const FileName = "RDFSConfig.toml"

// Config is the persistent configuration document.
type Config struct {
	CurrentPath *Path  `toml:"current_path"`
	SearchPaths []Path `toml:"search_paths"`
}

// Path is a storage root with its available space in bytes.
type Path struct {
	Path      string `toml:"path"`
	Available uint64 `toml:"available"`
}

// DefaultPath returns the per-user location of the configuration file,
// ~/.rdfs/RDFSConfig.toml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "resolving home directory")
	}
	return filepath.Join(home, ".rdfs", FileName), nil
}

// Load reads the configuration from its default location.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	cfg := new(Config)
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	log.WithField("path", path).Debug("loaded rdfs config")
	return cfg, nil
}

// Save writes the configuration to its default location.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the configuration to path atomically, creating parent
// directories as needed.
func (c *Config) SaveFile(path string) error {
	buf := new(bytes.Buffer)
	if err := toml.NewEncoder(buf).Encode(c); err != nil {
		return errors.Wrap(err, "encoding config")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(path))
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	return nil
}

// AddPath records dir as a candidate storage root together with the free
// space currently available under it. An unreadable mount records zero.
func (c *Config) AddPath(dir string) {
	available, err := freeSpace(dir)
	if err != nil {
		log.WithError(err).WithField("path", dir).Debug("free space query failed")
		available = 0
	}
	c.SearchPaths = append(c.SearchPaths, Path{Path: dir, Available: available})
}

// RemovePath drops dir from the candidate roots, reporting whether anything
// was removed.
func (c *Config) RemovePath(dir string) bool {
	kept := c.SearchPaths[:0]
	for _, p := range c.SearchPaths {
		if p.Path != dir {
			kept = append(kept, p)
		}
	}
	removed := len(kept) != len(c.SearchPaths)
	c.SearchPaths = kept
	return removed
}

// PathWithSpace returns the first candidate root with at least min bytes
// available.
func (c *Config) PathWithSpace(min uint64) (string, bool) {
	for _, p := range c.SearchPaths {
		if p.Available >= min {
			return p.Path, true
		}
	}
	return "", false
}
