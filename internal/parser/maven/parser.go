// Package maven implements the Maven naming scheme, where package IDs take
// the form <feed prefix>#<group>#<artifact> and file names append
// #<version> followed by the extension.
//
// A group, artifact or version that itself contains the delimiter cannot be
// expressed in this scheme; such inputs are rejected rather than re-joined.
package maven

import (
	"fmt"
	"strings"

	"github.com/ralt/pkgmeta/internal/identifier"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
)

// Config holds the Maven scheme tokens
type Config struct {
	FeedPrefix string `toml:"feed_prefix"`
	Delimiter  string `toml:"delimiter"`

	parser.Naming
}

// DefaultConfig returns the tokens used by Maven feeds
func DefaultConfig() Config {
	return Config{
		FeedPrefix: "Maven",
		Delimiter:  "#",
		Naming:     parser.DefaultNaming(),
	}
}

// Parser implements parser.Parser for Maven package IDs and file names
type Parser struct {
	cfg Config
}

// NewParser creates a new Maven parser, filling empty tokens with defaults
func NewParser(cfg Config) *Parser {
	def := DefaultConfig()
	if cfg.FeedPrefix == "" {
		cfg.FeedPrefix = def.FeedPrefix
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = def.Delimiter
	}
	cfg.Naming = cfg.Naming.WithDefaults()

	return &Parser{cfg: cfg}
}

// FeedType returns models.FeedTypeMaven
func (p *Parser) FeedType() models.FeedType {
	return models.FeedTypeMaven
}

// ParseID parses a <prefix>#<group>#<artifact> package ID
func (p *Parser) ParseID(packageID string) (models.BaseMetadata, error) {
	parts := strings.Split(packageID, p.cfg.Delimiter)

	if len(parts) != 3 {
		return models.BaseMetadata{}, p.errorf(packageID, models.CauseDelimiterCount, "3 %q separated parts", p.cfg.Delimiter)
	}
	if parts[0] != p.cfg.FeedPrefix {
		return models.BaseMetadata{}, p.errorf(packageID, models.CausePrefixMismatch, "prefix %q", p.cfg.FeedPrefix)
	}
	if parts[1] == "" || parts[2] == "" {
		return models.BaseMetadata{}, p.errorf(packageID, models.CauseMalformedIdentity, "non-empty group and artifact")
	}

	return p.cfg.Base(models.FeedTypeMaven, p.join(parts...)), nil
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

	if version == "" || strings.Contains(version, p.cfg.Delimiter) {
		return models.Metadata{}, p.errorf(version, models.CauseMalformedIdentity, "a non-empty version without %q", p.cfg.Delimiter)
	}

	return p.cfg.Build(base, version, extension, p.cfg.Delimiter), nil
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
// Maven#com.google.guava#guava#22.0.jar-<opaque suffix>
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
// Maven#com.google.guava#guava#23.3-jre_9822965F2883AD43AD79DA4E8795319F.jar
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

	parts := strings.Split(idAndVersion, p.cfg.Delimiter)

	if len(parts) != 4 {
		return models.Metadata{}, p.errorf(filename, models.CauseDelimiterCount, "4 %q separated parts", p.cfg.Delimiter)
	}
	if parts[0] != p.cfg.FeedPrefix {
		return models.Metadata{}, p.errorf(filename, models.CausePrefixMismatch, "prefix %q", p.cfg.FeedPrefix)
	}

	meta, err := p.ParseIDVersionExtension(p.join(parts[:3]...), parts[3], extension)
	if pe, ok := err.(*models.ParseError); ok {
		pe.Input = filename
	}
	return meta, err
}

func (p *Parser) join(parts ...string) string {
	return strings.Join(parts, p.cfg.Delimiter)
}

func (p *Parser) errorf(input string, cause models.ParseCause, format string, args ...interface{}) error {
	return &models.ParseError{
		Scheme:   models.FeedTypeMaven,
		Input:    input,
		Cause:    cause,
		Expected: fmt.Sprintf(format, args...),
	}
}
