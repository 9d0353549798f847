// Package config loads the project manifest that drives workspace checks and
// the command line tool. A manifest is either Rune.toml or runefront.yaml.
package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/blang/semver"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Manifest file names, in lookup order.
const (
	TOMLManifest = "Rune.toml"
	YAMLManifest = "runefront.yaml"
)

// Config is the complete project configuration.
type Config struct {
	Package PackageConfig `toml:"package" yaml:"package"`
	Sources SourcesConfig `toml:"sources" yaml:"sources"`
	Parser  ParserConfig  `toml:"parser" yaml:"parser"`
	Log     LogConfig     `toml:"log" yaml:"log"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
}

// PackageConfig names the package being checked.
type PackageConfig struct {
	Name    string `toml:"name" yaml:"name"`
	Version string `toml:"version" yaml:"version"`
}

// SourcesConfig selects source files relative to Root.
type SourcesConfig struct {
	Root    string   `toml:"root" yaml:"root"`
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`
}

// ParserConfig bounds parsing work.
type ParserConfig struct {
	// MaxDepth rejects files whose brace nesting is deeper, before parsing.
	// Zero disables the guard.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
	// Workers is the number of files parsed concurrently.
	Workers int `toml:"workers" yaml:"workers"`
	// Timeout abandons a single file's parse. Zero disables it.
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// OutputConfig configures rendered output.
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"`
	Color  bool   `toml:"color" yaml:"color"`
}

// Duration wraps time.Duration for text-based formats.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Package: PackageConfig{
			Name:    "main",
			Version: "0.1.0",
		},
		Sources: SourcesConfig{
			Root:    ".",
			Include: []string{"**/*.rn"},
		},
		Parser: ParserConfig{
			MaxDepth: 256,
			Workers:  4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "json",
			Color:  true,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Package.Name == "" {
		return errors.New("package.name is required")
	}
	if _, err := semver.Parse(c.Package.Version); err != nil {
		return errors.Wrapf(err, "package.version %q", c.Package.Version)
	}
	if len(c.Sources.Include) == 0 {
		return errors.New("sources.include needs at least one pattern")
	}
	if c.Parser.MaxDepth < 0 {
		return errors.New("parser.max_depth must not be negative")
	}
	if c.Parser.Workers < 1 {
		return errors.New("parser.workers must be at least 1")
	}
	if c.Parser.Timeout.Duration < 0 {
		return errors.New("parser.timeout must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return errors.Errorf("output.format must be json or yaml, got %q", c.Output.Format)
	}
	return nil
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, errors.Wrapf(err, "log.level %q", l.Level)
	}
	return level, nil
}

// Version returns the parsed package version. Call Validate first.
func (c *Config) Version() semver.Version {
	v, _ := semver.Parse(c.Package.Version)
	return v
}

// Load reads a manifest, choosing the format by file extension. Values absent
// from the file keep their defaults. Environment variables in the source
// root and patterns are expanded. Relative source roots resolve against
// the manifest's directory.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	default:
		return nil, errors.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	cfg.expandEnvVars()

	if !filepath.IsAbs(cfg.Sources.Root) {
		cfg.Sources.Root = filepath.Join(filepath.Dir(path), cfg.Sources.Root)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// expandEnvVars expands environment variables in path-like values.
func (c *Config) expandEnvVars() {
	c.Sources.Root = os.ExpandEnv(c.Sources.Root)
	for i, pattern := range c.Sources.Include {
		c.Sources.Include[i] = os.ExpandEnv(pattern)
	}
	for i, pattern := range c.Sources.Exclude {
		c.Sources.Exclude[i] = os.ExpandEnv(pattern)
	}
}

// Find walks up from dir looking for a manifest and returns its path.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve directory")
	}
	for {
		for _, name := range []string{TOMLManifest, YAMLManifest} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.Errorf("no %s or %s found", TOMLManifest, YAMLManifest)
		}
		dir = parent
	}
}

// SaveToFile writes the configuration, choosing the format by extension.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create config directory")
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.Wrap(err, "marshal config")
		}
	default:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, "marshal config")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(err, "marshal config")
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}
