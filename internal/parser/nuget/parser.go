// Package nuget implements the NuGet naming scheme, where a file name is
// the package ID and the version joined by a dot, for example
// package.suffix.1.0.0.zip.
package nuget

import (
	"fmt"
	"regexp"

	"github.com/ralt/pkgmeta/internal/identifier"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
)

// VersionDelimiter separates the package ID from the version
const VersionDelimiter = "."

var (
	idRe = regexp.MustCompile(`^\w+(?:[_.-]\w+)*$`)

	// Shortest ID followed by a version of 1-4 numeric segments with
	// optional prerelease and build labels.
	idAndVersionRe = regexp.MustCompile(
		`^(.+?)\.(\d+(?:\.\d+){0,3}(?:-[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?(?:\+[0-9A-Za-z-]+(?:\.[0-9A-Za-z-]+)*)?)$`)
)

// Config holds the NuGet scheme settings
type Config struct {
	MaxIDLength int `toml:"max_id_length"`

	parser.Naming
}

// DefaultConfig returns the settings used by NuGet feeds
func DefaultConfig() Config {
	return Config{
		MaxIDLength: 100,
		Naming:      parser.DefaultNaming(),
	}
}

// Parser implements parser.Parser for NuGet package IDs and file names
type Parser struct {
	cfg Config
}

// NewParser creates a new NuGet parser, filling empty settings with defaults
func NewParser(cfg Config) *Parser {
	if cfg.MaxIDLength <= 0 {
		cfg.MaxIDLength = DefaultConfig().MaxIDLength
	}
	cfg.Naming = cfg.Naming.WithDefaults()

	return &Parser{cfg: cfg}
}

// SplitIDAndVersion separates a dotted identity-and-version string into the
// package ID and the version. The ID is the shortest prefix whose remainder
// is a version token.
func SplitIDAndVersion(idAndVersion string) (id, version string, ok bool) {
	matches := idAndVersionRe.FindStringSubmatch(idAndVersion)
	if matches == nil {
		return "", "", false
	}
	return matches[1], matches[2], true
}

// FeedType returns models.FeedTypeNuGet
func (p *Parser) FeedType() models.FeedType {
	return models.FeedTypeNuGet
}

// ParseID validates a NuGet package ID
func (p *Parser) ParseID(packageID string) (models.BaseMetadata, error) {
	if len(packageID) > p.cfg.MaxIDLength {
		return models.BaseMetadata{}, p.errorf(packageID, models.CauseMalformedIdentity, "at most %d characters", p.cfg.MaxIDLength)
	}
	if !idRe.MatchString(packageID) {
		return models.BaseMetadata{}, p.errorf(packageID, models.CauseMalformedIdentity, "word characters separated by '.', '-' or '_'")
	}

	return p.cfg.Base(models.FeedTypeNuGet, packageID), nil
}

// TryParseID is ParseID reporting failure as false
func (p *Parser) TryParseID(packageID string) (models.BaseMetadata, bool) {
	return parser.Try(p.ParseID(packageID))
}

// ParseIDVersionExtension builds the metadata of a package version
func (p *Parser) ParseIDVersionExtension(packageID, version, extension string) (models.Metadata, error) {
	base, err := p.ParseID(packageID)
	if err != nil {
		return models.Metadata{}, err
	}

	if version == "" {
		return models.Metadata{}, p.errorf(version, models.CauseMalformedIdentity, "a non-empty version")
	}

	return p.cfg.Build(base, version, extension, VersionDelimiter), nil
}

// TryParseIDVersionExtension is ParseIDVersionExtension reporting failure as false
func (p *Parser) TryParseIDVersionExtension(packageID, version, extension string) (models.Metadata, bool) {
	return parser.Try(p.ParseIDVersionExtension(packageID, version, extension))
}

// ParseIDVersionExtensionPhysical is ParseIDVersionExtension plus size and hash
func (p *Parser) ParseIDVersionExtensionPhysical(packageID, version, extension string, size int64, hash string) (models.PhysicalMetadata, error) {
	meta, err := p.ParseIDVersionExtension(packageID, version, extension)
	return parser.AttachResult(meta, err, size, hash)
}

// ParseFilename parses a target file name such as
// package.suffix.1.0.0.zip-<opaque suffix>
func (p *Parser) ParseFilename(filename string, extensions []string) (models.Metadata, error) {
	idAndVersion, extension := identifier.Split(filename, extensions)
	return p.parseIDAndVersion(filename, idAndVersion, extension)
}

// TryParseFilename is ParseFilename reporting failure as false
func (p *Parser) TryParseFilename(filename string, extensions []string) (models.Metadata, bool) {
	return parser.Try(p.ParseFilename(filename, extensions))
}

// ParseFilenamePhysical is ParseFilename plus size and hash
func (p *Parser) ParseFilenamePhysical(filename string, extensions []string, size int64, hash string) (models.PhysicalMetadata, error) {
	meta, err := p.ParseFilename(filename, extensions)
	return parser.AttachResult(meta, err, size, hash)
}

// ParseServerFilename parses a server cache file name such as
// package.suffix.1.0.0_9822965F2883AD43AD79DA4E8795319F.zip
func (p *Parser) ParseServerFilename(filename string, extensions []string) (models.Metadata, error) {
	idAndVersion, extension := identifier.SplitServer(filename, extensions, p.cfg.CacheDelimiter)
	return p.parseIDAndVersion(filename, idAndVersion, extension)
}

// TryParseServerFilename is ParseServerFilename reporting failure as false
func (p *Parser) TryParseServerFilename(filename string, extensions []string) (models.Metadata, bool) {
	return parser.Try(p.ParseServerFilename(filename, extensions))
}

// ParseServerFilenamePhysical is ParseServerFilename plus size and hash
func (p *Parser) ParseServerFilenamePhysical(filename string, extensions []string, size int64, hash string) (models.PhysicalMetadata, error) {
	meta, err := p.ParseServerFilename(filename, extensions)
	return parser.AttachResult(meta, err, size, hash)
}

func (p *Parser) parseIDAndVersion(filename, idAndVersion, extension string) (models.Metadata, error) {
	if extension == "" {
		return models.Metadata{}, p.errorf(filename, models.CauseUnknownExtension, "")
	}

	id, version, ok := SplitIDAndVersion(idAndVersion)
	if !ok {
		return models.Metadata{}, p.errorf(filename, models.CauseMalformedIdentity, "<id>.<version>")
	}

	meta, err := p.ParseIDVersionExtension(id, version, extension)
	if pe, ok := err.(*models.ParseError); ok {
		pe.Input = filename
	}
	return meta, err
}

func (p *Parser) errorf(input string, cause models.ParseCause, format string, args ...interface{}) error {
	return &models.ParseError{
		Scheme:   models.FeedTypeNuGet,
		Input:    input,
		Cause:    cause,
		Expected: fmt.Sprintf(format, args...),
	}
}
