package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ralt/pkgmeta/internal/utils"
)

// SumsFileName is the checksum index written next to the manifest
const SumsFileName = "SUMS"

// FileInfo contains checksum information for one written file
type FileInfo struct {
	Path     string
	Checksum *utils.Checksum
}

// GenerateSumsFile creates the checksum index covering the manifest files
func GenerateSumsFile(root string, date time.Time, files []FileInfo) []byte {
	var buf bytes.Buffer

	if root != "" {
		fmt.Fprintf(&buf, "Root: %s\n", root)
	}
	fmt.Fprintf(&buf, "Date: %s\n", date.UTC().Format(time.RFC1123))

	buf.WriteString("SHA256:\n")
	for _, file := range files {
		fmt.Fprintf(&buf, " %s %d %s\n", file.Checksum.SHA256, file.Checksum.Size, file.Path)
	}

	buf.WriteString("SHA512:\n")
	for _, file := range files {
		fmt.Fprintf(&buf, " %s %d %s\n", file.Checksum.SHA512, file.Checksum.Size, file.Path)
	}

	return buf.Bytes()
}

// CalculateFileInfos calculates checksums for files relative to basePath
func CalculateFileInfos(basePath string, files []string) ([]FileInfo, error) {
	infos := make([]FileInfo, 0, len(files))

	for _, file := range files {
		checksum, err := utils.CalculateChecksums(filepath.Join(basePath, file))
		if err != nil {
			return nil, fmt.Errorf("failed to calculate checksum for %s: %w", file, err)
		}
		infos = append(infos, FileInfo{Path: file, Checksum: checksum})
	}

	return infos, nil
}
