// Package manifest writes the package manifest describing a scanned cache
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/utils"
	"gopkg.in/yaml.v3"
)

// FormatVersion is bumped whenever the manifest layout changes
const FormatVersion = 1

// BaseName is the manifest file name without its format suffix
const BaseName = "manifest"

// Manifest lists every package found in a cache directory
type Manifest struct {
	Version     int                       `yaml:"version" json:"version"`
	GeneratedAt time.Time                 `yaml:"generated_at" json:"generated_at"`
	Root        string                    `yaml:"root,omitempty" json:"root,omitempty"`
	Packages    []models.PhysicalMetadata `yaml:"packages" json:"packages"`
}

// FileName returns the manifest file name for a format
func FileName(format string) string {
	return BaseName + "." + format
}

// Encode serializes a manifest as yaml or json
func Encode(m *Manifest, format string) ([]byte, error) {
	switch format {
	case "yaml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
}

// Decode parses a manifest previously written by Encode
func Decode(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	case "json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}

	if m.Version > FormatVersion {
		return nil, fmt.Errorf("manifest version %d is newer than supported version %d", m.Version, FormatVersion)
	}
	return &m, nil
}

// SortPackages orders packages by identity, then by server cache file name
func SortPackages(packages []models.PhysicalMetadata) {
	sort.SliceStable(packages, func(i, j int) bool {
		a, b := utils.PackageIdentity(packages[i].Metadata), utils.PackageIdentity(packages[j].Metadata)
		if a != b {
			return a < b
		}
		return packages[i].ServerCacheFileName < packages[j].ServerCacheFileName
	})
}
