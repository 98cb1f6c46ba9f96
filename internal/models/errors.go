package models

import (
	"errors"
	"fmt"
)

// ErrParse matches every ParseError through errors.Is
var ErrParse = errors.New("unable to parse package identity")

// ParseCause describes why an input was rejected by a scheme parser
type ParseCause int

const (
	CauseDelimiterCount ParseCause = iota
	CausePrefixMismatch
	CauseUnknownExtension
	CauseMalformedIdentity
)

// String returns the string representation of ParseCause
func (c ParseCause) String() string {
	switch c {
	case CauseDelimiterCount:
		return "unexpected delimiter count"
	case CausePrefixMismatch:
		return "feed prefix mismatch"
	case CauseUnknownExtension:
		return "unable to determine file type"
	case CauseMalformedIdentity:
		return "malformed package identity"
	default:
		return "unknown cause"
	}
}

// ParseError is returned when an input does not conform to a naming scheme
type ParseError struct {
	Scheme   FeedType
	Input    string
	Cause    ParseCause
	Expected string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: %s in %q (expected %s)", e.Scheme, e.Cause, e.Input, e.Expected)
	}
	return fmt.Sprintf("%s: %s in %q", e.Scheme, e.Cause, e.Input)
}

// Is reports whether target is ErrParse
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrPackageParse ErrorType = iota
	ErrManifest
	ErrSigning
	ErrFileOp
	ErrInvalidConfig
	ErrCatalog
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrPackageParse:
		return "PackageParse"
	case ErrManifest:
		return "Manifest"
	case ErrSigning:
		return "Signing"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrCatalog:
		return "Catalog"
	default:
		return "Unknown"
	}
}

// PkgMetaError represents an error raised by the pkgmeta tooling
type PkgMetaError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *PkgMetaError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *PkgMetaError) Unwrap() error {
	return e.Err
}
