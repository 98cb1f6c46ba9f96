package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies a file from src to dst
func CopyFile(src, dst string) error {
	// Create destination directory if it doesn't exist
	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return err
	}

	// Open source file
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	// Write to a temporary name first so readers never see a partial file
	tmp := dst + ".partial"
	dstFile, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		return err
	}

	// Sync to disk
	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		os.Remove(tmp)
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FindStaged returns the files in dir matching a glob pattern such as
// <server cache file name>*<extension>
func FindStaged(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return matches, nil
}

// ShouldStage determines if a package file needs to be copied into the cache.
// candidates are the cached files already matching the package; a candidate
// with the same size and SHA-256 makes the copy unnecessary.
// Returns: (existingPath, needsCopy, error)
func ShouldStage(srcPath, srcSHA256 string, candidates []string) (string, bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return "", false, fmt.Errorf("cannot stat source: %w", err)
	}

	for _, candidate := range candidates {
		dstInfo, err := os.Stat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", false, fmt.Errorf("cannot stat destination: %w", err)
		}

		// Different sizes = different content
		if srcInfo.Size() != dstInfo.Size() {
			continue
		}

		dstChecksums, err := CalculateChecksums(candidate)
		if err != nil {
			// Can't calculate checksums, copy to be safe
			continue
		}
		if dstChecksums.SHA256 == srcSHA256 {
			return candidate, false, nil
		}
	}

	return "", true, nil
}
