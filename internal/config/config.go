package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"dirpatch/internal/hash"
	"dirpatch/internal/report"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "dirpatch.yaml"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Algorithm       string   `yaml:"algorithm"`
	IgnoreUnchanged bool     `yaml:"ignore_unchanged"`
	IgnoreModTime   bool     `yaml:"ignore_mtime"`
	Workers         int      `yaml:"workers"`
	OutputFile      string   `yaml:"output_file"`
	Exclude         []string `yaml:"exclude"`
}

// DefaultConfig scans every file with md5. Workers of zero means the scanner
// picks its own pool size.
func DefaultConfig() *Config {
	return &Config{
		Algorithm:  string(hash.DefaultAlgorithm),
		OutputFile: report.DefaultFileName,
		Exclude:    []string{},
	}
}

// LoadConfig reads a YAML config. A missing file yields DefaultConfig; keys
// absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Initialize Exclude slice if nil (for "exclude:" with no items)
	if cfg.Exclude == nil {
		cfg.Exclude = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := hash.ParseAlgorithm(c.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.OutputFile == "" {
		return fmt.Errorf("%w: output_file must not be empty", ErrInvalidConfig)
	}
	return nil
}

// HashAlgorithm parses the configured algorithm name.
func (c *Config) HashAlgorithm() (hash.Algorithm, error) {
	alg, err := hash.ParseAlgorithm(c.Algorithm)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return alg, nil
}
