// Package config handles configuration loading and defaults for pkgmeta
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
	"github.com/ralt/pkgmeta/internal/parser/maven"
	"github.com/ralt/pkgmeta/internal/parser/nuget"
)

// Config holds all configuration for pkgmeta
type Config struct {
	Naming   parser.Naming  `toml:"naming"`
	Maven    MavenConfig    `toml:"maven"`
	NuGet    NuGetConfig    `toml:"nuget"`
	Manifest ManifestConfig `toml:"manifest"`
	Logging  LoggingConfig  `toml:"logging"`
}

// MavenConfig holds the Maven scheme tokens and candidate extensions
type MavenConfig struct {
	FeedPrefix string   `toml:"feed_prefix"`
	Delimiter  string   `toml:"delimiter"`
	Extensions []string `toml:"extensions"`
}

// NuGetConfig holds the NuGet scheme settings and candidate extensions
type NuGetConfig struct {
	MaxIDLength int      `toml:"max_id_length"`
	Extensions  []string `toml:"extensions"`
}

// ManifestConfig holds manifest output settings
type ManifestConfig struct {
	Format       string   `toml:"format"`
	Compressions []string `toml:"compressions"`
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	mvn := maven.DefaultConfig()
	ng := nuget.DefaultConfig()

	return &Config{
		Naming: parser.DefaultNaming(),
		Maven: MavenConfig{
			FeedPrefix: mvn.FeedPrefix,
			Delimiter:  mvn.Delimiter,
			Extensions: []string{".jar", ".war", ".ear", ".rar", ".zip"},
		},
		NuGet: NuGetConfig{
			MaxIDLength: ng.MaxIDLength,
			// Longest extensions first so .tar.gz wins over .tar
			Extensions: []string{".nupkg", ".tar.bz2", ".tar.gz", ".tgz", ".tar", ".zip"},
		},
		Manifest: ManifestConfig{
			Format:       "yaml",
			Compressions: []string{"gz"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a file, merging with defaults
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if no config file
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the scheme tokens can produce unambiguous names
func (c *Config) Validate() error {
	if c.Maven.Delimiter == "" {
		return fmt.Errorf("maven.delimiter must not be empty")
	}
	if c.Maven.FeedPrefix == "" {
		return fmt.Errorf("maven.feed_prefix must not be empty")
	}
	if c.Naming.CacheDelimiter == "" {
		return fmt.Errorf("naming.cache_delimiter must not be empty")
	}
	if c.Naming.CacheDelimiter == c.Maven.Delimiter {
		return fmt.Errorf("naming.cache_delimiter and maven.delimiter must differ")
	}

	switch c.Manifest.Format {
	case "yaml", "json":
	default:
		return fmt.Errorf("unsupported manifest format %q", c.Manifest.Format)
	}

	for _, comp := range c.Manifest.Compressions {
		switch comp {
		case "gz", "zst", "xz":
		default:
			return fmt.Errorf("unsupported manifest compression %q", comp)
		}
	}

	return nil
}

// MavenParser builds the Maven parser described by the configuration
func (c *Config) MavenParser() *maven.Parser {
	return maven.NewParser(maven.Config{
		FeedPrefix: c.Maven.FeedPrefix,
		Delimiter:  c.Maven.Delimiter,
		Naming:     c.Naming,
	})
}

// NuGetParser builds the NuGet parser described by the configuration
func (c *Config) NuGetParser() *nuget.Parser {
	return nuget.NewParser(nuget.Config{
		MaxIDLength: c.NuGet.MaxIDLength,
		Naming:      c.Naming,
	})
}

// Chain returns the configured parsers, Maven first since its prefix makes
// it the stricter scheme
func (c *Config) Chain() parser.Chain {
	return parser.Chain{c.MavenParser(), c.NuGetParser()}
}

// Extensions returns the candidate extensions of both schemes without
// duplicates, longest first
func (c *Config) Extensions() []string {
	seen := make(map[string]bool)
	var exts []string
	for _, list := range [][]string{c.Maven.Extensions, c.NuGet.Extensions} {
		for _, ext := range list {
			if ext == "" || seen[ext] {
				continue
			}
			seen[ext] = true
			exts = append(exts, ext)
		}
	}

	sort.SliceStable(exts, func(i, j int) bool {
		return len(exts[i]) > len(exts[j])
	})
	return exts
}

// ExtensionsFor returns the candidate extensions of one scheme
func (c *Config) ExtensionsFor(feedType models.FeedType) []string {
	switch feedType {
	case models.FeedTypeMaven:
		return c.Maven.Extensions
	case models.FeedTypeNuGet:
		return c.NuGet.Extensions
	default:
		return c.Extensions()
	}
}
