// Package parser defines the capability set shared by every package naming
// scheme and the plumbing the scheme implementations have in common.
package parser

import (
	"github.com/ralt/pkgmeta/internal/models"
)

// Parser interface for package naming schemes
//
// The Parse methods return a *models.ParseError when the input does not
// belong to the scheme. The Try methods report the same outcome as a
// boolean and never return a partially filled record.
type Parser interface {
	// FeedType returns the scheme this parser implements
	FeedType() models.FeedType

	// ParseID parses a bare package ID
	ParseID(packageID string) (models.BaseMetadata, error)
	TryParseID(packageID string) (models.BaseMetadata, bool)

	// ParseIDVersionExtension derives the full metadata from its parts
	ParseIDVersionExtension(packageID, version, extension string) (models.Metadata, error)
	TryParseIDVersionExtension(packageID, version, extension string) (models.Metadata, bool)
	ParseIDVersionExtensionPhysical(packageID, version, extension string, size int64, hash string) (models.PhysicalMetadata, error)

	// ParseFilename parses an externally supplied (target) file name
	ParseFilename(filename string, extensions []string) (models.Metadata, error)
	TryParseFilename(filename string, extensions []string) (models.Metadata, bool)
	ParseFilenamePhysical(filename string, extensions []string, size int64, hash string) (models.PhysicalMetadata, error)

	// ParseServerFilename parses a file name written by the server cache
	ParseServerFilename(filename string, extensions []string) (models.Metadata, error)
	TryParseServerFilename(filename string, extensions []string) (models.Metadata, bool)
	ParseServerFilenamePhysical(filename string, extensions []string, size int64, hash string) (models.PhysicalMetadata, error)
}

// Naming holds the tokens shared by every scheme when deriving file names
type Naming struct {
	// CacheDelimiter separates the identity from the random token in
	// server cache file names
	CacheDelimiter string `toml:"cache_delimiter"`

	// Wildcard is appended to search patterns
	Wildcard string `toml:"wildcard"`
}

// DefaultNaming returns the naming tokens used by the server cache
func DefaultNaming() Naming {
	return Naming{
		CacheDelimiter: "_",
		Wildcard:       "*",
	}
}

// WithDefaults fills empty tokens from DefaultNaming
func (n Naming) WithDefaults() Naming {
	def := DefaultNaming()
	if n.CacheDelimiter == "" {
		n.CacheDelimiter = def.CacheDelimiter
	}
	if n.Wildcard == "" {
		n.Wildcard = def.Wildcard
	}
	return n
}

// Build derives every Metadata field from a validated base record
func (n Naming) Build(base models.BaseMetadata, version, extension, versionDelimiter string) models.Metadata {
	idAndVersion := base.PackageID + versionDelimiter + version

	return models.Metadata{
		BaseMetadata:                   base,
		Version:                        version,
		FileExtension:                  extension,
		PackageAndVersionSearchPattern: idAndVersion + n.Wildcard,
		ServerCacheFileName:            idAndVersion + n.CacheDelimiter,
		TargetFileName:                 idAndVersion + extension,
		VersionDelimiter:               versionDelimiter,
	}
}

// Base builds the base record for an already normalized package ID
func (n Naming) Base(feedType models.FeedType, packageID string) models.BaseMetadata {
	return models.BaseMetadata{
		PackageID:            packageID,
		FeedType:             feedType,
		PackageSearchPattern: packageID + n.Wildcard,
	}
}

// Attach adds caller supplied physical attributes to parsed metadata
func Attach(meta models.Metadata, size int64, hash string) models.PhysicalMetadata {
	return models.PhysicalMetadata{
		Metadata: meta,
		Size:     size,
		Hash:     hash,
	}
}

// AttachResult is Attach for the (value, error) pair of a parse call
func AttachResult(meta models.Metadata, err error, size int64, hash string) (models.PhysicalMetadata, error) {
	if err != nil {
		return models.PhysicalMetadata{}, err
	}
	return Attach(meta, size, hash), nil
}

// Try converts the (value, error) pair of a parse call into (value, ok),
// returning the zero value on failure
func Try[T any](value T, err error) (T, bool) {
	if err != nil {
		var zero T
		return zero, false
	}
	return value, true
}
