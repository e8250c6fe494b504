// Package config reads table settings from YAML and turns them into chash options.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/theflywheel/chash"
)

// Hash function names
const (
	HashDJB2   = "djb2"
	HashXXHash = "xxhash"
)

// Remove policy names
const (
	PolicyTombstone = "tombstone"
	PolicyUnlink    = "unlink"
)

const defaultCapacity = 8

// Config describes how to build a table
type Config struct {
	// Capacity is the initial number of buckets
	Capacity int `yaml:"capacity"`
	// LoadFactor enables automatic doubling above this ratio. Zero disables it.
	LoadFactor float64 `yaml:"loadFactor"`
	// Hash is the hash function name
	Hash string `yaml:"hash"`
	// RemovePolicy is either tombstone or unlink
	RemovePolicy string `yaml:"removePolicy"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Capacity:     defaultCapacity,
		Hash:         HashDJB2,
		RemovePolicy: PolicyTombstone,
	}
}

// Load reads and parses a YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, fills unset fields from Default and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field
func (c *Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: got %d", chash.ErrInvalidCapacity, c.Capacity)
	}
	if c.LoadFactor < 0 || math.IsNaN(c.LoadFactor) {
		return fmt.Errorf("%w: loadFactor %v", chash.ErrInvalidOption, c.LoadFactor)
	}
	if _, err := c.hashFunc(); err != nil {
		return err
	}
	if _, err := c.removePolicy(); err != nil {
		return err
	}
	return nil
}

func (c *Config) hashFunc() (chash.HashFunc, error) {
	switch c.Hash {
	case HashDJB2:
		return chash.DJB2, nil
	case HashXXHash:
		return chash.XXHash, nil
	}
	return nil, fmt.Errorf("%w: unknown hash %q", chash.ErrInvalidOption, c.Hash)
}

func (c *Config) removePolicy() (chash.RemovePolicy, error) {
	switch c.RemovePolicy {
	case PolicyTombstone:
		return chash.Tombstone, nil
	case PolicyUnlink:
		return chash.Unlink, nil
	}
	return 0, fmt.Errorf("%w: unknown removePolicy %q", chash.ErrInvalidOption, c.RemovePolicy)
}

// Options maps the config onto chash options. Capacity is passed to chash.New separately.
func (c *Config) Options() ([]chash.Option, error) {
	hash, err := c.hashFunc()
	if err != nil {
		return nil, err
	}
	policy, err := c.removePolicy()
	if err != nil {
		return nil, err
	}
	return []chash.Option{
		chash.WithHash(hash),
		chash.WithLoadFactor(c.LoadFactor),
		chash.WithRemovePolicy(policy),
	}, nil
}

// String renders the config as YAML
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("unable to marshal config: %v", err)
	}
	return string(out)
}
