package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ralt/pkgmeta/internal/models"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Maven.FeedPrefix != "Maven" {
		t.Errorf("Maven.FeedPrefix = %q, want Maven", cfg.Maven.FeedPrefix)
	}
	if cfg.Maven.Delimiter != "#" {
		t.Errorf("Maven.Delimiter = %q, want #", cfg.Maven.Delimiter)
	}
	if cfg.Naming.CacheDelimiter != "_" || cfg.Naming.Wildcard != "*" {
		t.Errorf("Naming = %+v", cfg.Naming)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Maven.FeedPrefix != "Maven" {
		t.Errorf("Maven.FeedPrefix = %q, want default", cfg.Maven.FeedPrefix)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pkgmeta.toml")
	content := `
[naming]
cache_delimiter = "~"

[maven]
feed_prefix = "Java"
extensions = [".jar"]

[manifest]
format = "json"
compressions = ["zst", "xz"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Naming.CacheDelimiter != "~" {
		t.Errorf("CacheDelimiter = %q, want ~", cfg.Naming.CacheDelimiter)
	}
	if cfg.Naming.Wildcard != "*" {
		t.Errorf("Wildcard = %q, want default *", cfg.Naming.Wildcard)
	}
	if cfg.Maven.FeedPrefix != "Java" {
		t.Errorf("FeedPrefix = %q, want Java", cfg.Maven.FeedPrefix)
	}
	if cfg.Maven.Delimiter != "#" {
		t.Errorf("Delimiter = %q, want default #", cfg.Maven.Delimiter)
	}
	if cfg.Manifest.Format != "json" {
		t.Errorf("Manifest.Format = %q, want json", cfg.Manifest.Format)
	}
	if strings.Join(cfg.Manifest.Compressions, ",") != "zst,xz" {
		t.Errorf("Manifest.Compressions = %v", cfg.Manifest.Compressions)
	}

	meta, err := cfg.MavenParser().ParseServerFilename("Java#org.example#lib#1.0~TOKEN.jar", cfg.Maven.Extensions)
	if err != nil {
		t.Fatalf("ParseServerFilename() error = %v", err)
	}
	if meta.ServerCacheFileName != "Java#org.example#lib#1.0~" {
		t.Errorf("ServerCacheFileName = %q", meta.ServerCacheFileName)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad toml":          "[maven\n",
		"same delimiters":   "[naming]\ncache_delimiter = \"#\"\n",
		"bad format":        "[manifest]\nformat = \"xml\"\n",
		"bad compression":   "[manifest]\ncompressions = [\"bz2\"]\n",
		"empty feed prefix": "[maven]\nfeed_prefix = \"\"\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pkgmeta.toml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pkgmeta.toml")

	cfg := DefaultConfig()
	cfg.Logging.Level = "debug"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", loaded.Logging.Level)
	}
	if len(loaded.NuGet.Extensions) != len(cfg.NuGet.Extensions) {
		t.Errorf("NuGet.Extensions = %v", loaded.NuGet.Extensions)
	}
}

func TestExtensions(t *testing.T) {
	cfg := DefaultConfig()
	exts := cfg.Extensions()

	seen := make(map[string]int)
	for _, ext := range exts {
		seen[ext]++
	}
	if seen[".zip"] != 1 {
		t.Errorf(".zip appears %d times, want 1", seen[".zip"])
	}

	for i := 1; i < len(exts); i++ {
		if len(exts[i]) > len(exts[i-1]) {
			t.Errorf("extensions not sorted longest first: %v", exts)
			break
		}
	}

	if got := cfg.ExtensionsFor(models.FeedTypeMaven); got[0] != ".jar" {
		t.Errorf("ExtensionsFor(maven) = %v", got)
	}
}

func TestChainOrder(t *testing.T) {
	chain := DefaultConfig().Chain()
	if len(chain) != 2 {
		t.Fatalf("Chain() has %d parsers, want 2", len(chain))
	}
	if chain[0].FeedType() != models.FeedTypeMaven || chain[1].FeedType() != models.FeedTypeNuGet {
		t.Errorf("Chain() order = %s, %s", chain[0].FeedType(), chain[1].FeedType())
	}
}
