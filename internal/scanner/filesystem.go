package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct {
	extensions []string
}

// NewFileSystemScanner creates a new filesystem scanner accepting files
// that end with one of the given extensions
func NewFileSystemScanner(extensions []string) *FileSystemScanner {
	return &FileSystemScanner{extensions: extensions}
}

// Scan recursively scans a directory for package files
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedFile, error) {
	var files []ScannedFile

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		if !s.Matches(info.Name()) {
			logrus.Debugf("Skipping %s: no candidate extension", path)
			return nil
		}

		files = append(files, ScannedFile{
			Path: path,
			Name: info.Name(),
			Size: info.Size(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Infof("Found %d candidate files in %s", len(files), dir)
	return files, nil
}

// Matches reports whether a file name ends with a candidate extension
func (s *FileSystemScanner) Matches(name string) bool {
	for _, ext := range s.extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
