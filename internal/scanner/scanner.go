package scanner

import "context"

// ScannedFile represents a candidate package file found during scanning
type ScannedFile struct {
	Path string
	Name string
	Size int64
}

// Scanner interface for finding package files in a cache directory
type Scanner interface {
	// Scan recursively scans a directory for package files
	Scan(ctx context.Context, dir string) ([]ScannedFile, error)

	// Matches reports whether a file name carries a candidate extension
	Matches(name string) bool
}
