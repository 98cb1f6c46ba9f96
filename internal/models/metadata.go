package models

import "fmt"

// FeedType identifies the naming scheme a package belongs to
type FeedType int

const (
	FeedTypeUnknown FeedType = iota
	FeedTypeMaven
	FeedTypeNuGet
)

// String returns the string representation of FeedType
func (f FeedType) String() string {
	switch f {
	case FeedTypeMaven:
		return "maven"
	case FeedTypeNuGet:
		return "nuget"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (f FeedType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *FeedType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "maven":
		*f = FeedTypeMaven
	case "nuget":
		*f = FeedTypeNuGet
	case "unknown", "":
		*f = FeedTypeUnknown
	default:
		return fmt.Errorf("unknown feed type %q", text)
	}
	return nil
}

// BaseMetadata describes a package identity without a version
type BaseMetadata struct {
	PackageID            string   `yaml:"package_id" json:"package_id"`
	FeedType             FeedType `yaml:"feed_type" json:"feed_type"`
	PackageSearchPattern string   `yaml:"package_search_pattern" json:"package_search_pattern"`
}

// Metadata describes a versioned package and the file names derived from it
type Metadata struct {
	BaseMetadata `yaml:",inline"`

	Version                        string `yaml:"version" json:"version"`
	FileExtension                  string `yaml:"file_extension" json:"file_extension"`
	PackageAndVersionSearchPattern string `yaml:"package_and_version_search_pattern" json:"package_and_version_search_pattern"`

	// ServerCacheFileName has no extension; the cache writer appends a
	// token and the extension.
	ServerCacheFileName string `yaml:"server_cache_file_name" json:"server_cache_file_name"`
	TargetFileName      string `yaml:"target_file_name" json:"target_file_name"`
	VersionDelimiter    string `yaml:"version_delimiter" json:"version_delimiter"`
}

// PhysicalMetadata is Metadata for a file whose size and hash are known
type PhysicalMetadata struct {
	Metadata `yaml:",inline"`

	Size int64  `yaml:"size" json:"size"`
	Hash string `yaml:"hash" json:"hash"`
}
