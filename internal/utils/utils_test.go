package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/pkgmeta/internal/models"
)

func TestCalculateChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	sums, err := CalculateChecksums(path)
	if err != nil {
		t.Fatalf("CalculateChecksums() error = %v", err)
	}

	if sums.Size != 5 {
		t.Errorf("Size = %d, want 5", sums.Size)
	}
	if sums.MD5 != "5d41402abc4b2a76b9719d911017c592" {
		t.Errorf("MD5 = %s", sums.MD5)
	}
	if sums.SHA256 != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("SHA256 = %s", sums.SHA256)
	}

	got, err := sums.Get("sha1")
	if err != nil || got != "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d" {
		t.Errorf("Get(sha1) = %s, %v", got, err)
	}
	if _, err := sums.Get("crc32"); err == nil {
		t.Error("Get(crc32) succeeded, want error")
	}
}

func TestCalculateChecksum(t *testing.T) {
	got, err := CalculateChecksum([]byte("hello"), "sha256")
	if err != nil {
		t.Fatalf("CalculateChecksum() error = %v", err)
	}
	if got != "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824" {
		t.Errorf("CalculateChecksum() = %s", got)
	}
	if _, err := CalculateChecksum([]byte("hello"), "crc32"); err == nil {
		t.Error("CalculateChecksum(crc32) succeeded, want error")
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("Maven#com.google.guava#guava#23.3-jre\n"), 50)

	for _, format := range []string{CompressionGzip, CompressionZstd, CompressionXz} {
		t.Run(format, func(t *testing.T) {
			compressed, err := Compress(data, format)
			if err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			if len(compressed) >= len(data) {
				t.Errorf("compressed size %d not smaller than %d", len(compressed), len(data))
			}

			decompressed, err := Decompress(compressed, format)
			if err != nil {
				t.Fatalf("Decompress() error = %v", err)
			}
			if !bytes.Equal(decompressed, data) {
				t.Error("round trip changed the data")
			}
		})
	}

	if _, err := Compress(data, "bz2"); err == nil {
		t.Error("Compress(bz2) succeeded, want error")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.jar")
	dst := filepath.Join(dir, "cache", "sub", "dst.jar")

	if err := os.WriteFile(src, []byte("jar contents"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "jar contents" {
		t.Errorf("copied data = %q", data)
	}
	if _, err := os.Stat(dst + ".partial"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestShouldStage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Acme.Web.1.0.0.zip")
	same := filepath.Join(dir, "Acme.Web.1.0.0_AAAA.zip")
	other := filepath.Join(dir, "Acme.Web.1.0.0_BBBB.zip")

	os.WriteFile(src, []byte("payload"), 0644)
	os.WriteFile(same, []byte("payload"), 0644)
	os.WriteFile(other, []byte("different"), 0644)

	sums, err := CalculateChecksums(src)
	if err != nil {
		t.Fatalf("CalculateChecksums() error = %v", err)
	}

	matches, err := FindStaged(dir, "Acme.Web.1.0.0_*.zip")
	if err != nil {
		t.Fatalf("FindStaged() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("FindStaged() = %v, want 2 matches", matches)
	}

	existing, needsCopy, err := ShouldStage(src, sums.SHA256, matches)
	if err != nil {
		t.Fatalf("ShouldStage() error = %v", err)
	}
	if needsCopy || existing != same {
		t.Errorf("ShouldStage() = %q, %v, want %q, false", existing, needsCopy, same)
	}

	_, needsCopy, err = ShouldStage(src, sums.SHA256, []string{other})
	if err != nil {
		t.Fatalf("ShouldStage() error = %v", err)
	}
	if !needsCopy {
		t.Error("ShouldStage() = false for different content, want true")
	}
}

func metadata(feedType models.FeedType, id, version string, hash string) models.PhysicalMetadata {
	return models.PhysicalMetadata{
		Metadata: models.Metadata{
			BaseMetadata: models.BaseMetadata{PackageID: id, FeedType: feedType},
			Version:      version,
		},
		Hash: hash,
	}
}

func TestPackageIdentity(t *testing.T) {
	a := metadata(models.FeedTypeNuGet, "Acme.Web", "1.0.0-Beta", "")
	b := metadata(models.FeedTypeNuGet, "acme.web", "1.0.0-beta", "")
	if PackageIdentity(a.Metadata) != PackageIdentity(b.Metadata) {
		t.Errorf("NuGet identities differ: %s vs %s", PackageIdentity(a.Metadata), PackageIdentity(b.Metadata))
	}

	c := metadata(models.FeedTypeMaven, "Maven#g#A", "1.0", "")
	d := metadata(models.FeedTypeMaven, "Maven#g#a", "1.0", "")
	if PackageIdentity(c.Metadata) == PackageIdentity(d.Metadata) {
		t.Error("Maven identities should be case-sensitive")
	}
}

func TestDetectConflictsAndDuplicates(t *testing.T) {
	existing := []models.PhysicalMetadata{
		metadata(models.FeedTypeMaven, "Maven#g#a", "1.0", "h1"),
	}
	incoming := []models.PhysicalMetadata{
		metadata(models.FeedTypeMaven, "Maven#g#a", "1.0", "h2"),
		metadata(models.FeedTypeMaven, "Maven#g#a", "2.0", "h3"),
	}

	conflicts := DetectConflicts(existing, incoming)
	if len(conflicts) != 1 || conflicts[0].Hash != "h2" {
		t.Errorf("DetectConflicts() = %+v", conflicts)
	}

	keys, groups := FindDuplicates(append(existing, incoming...))
	if len(keys) != 1 || keys[0] != "maven:Maven#g#a:1.0:" {
		t.Fatalf("FindDuplicates() keys = %v", keys)
	}
	if len(groups[keys[0]]) != 2 {
		t.Errorf("duplicate group size = %d, want 2", len(groups[keys[0]]))
	}
	if _, ok := groups["maven:Maven#g#a:2.0:"]; ok {
		t.Error("singleton group should not be reported")
	}
}

func TestDuplicatesDistinguishExtensions(t *testing.T) {
	jar := metadata(models.FeedTypeMaven, "Maven#g#a", "1.0", "h1")
	jar.FileExtension = ".jar"
	war := metadata(models.FeedTypeMaven, "Maven#g#a", "1.0", "h2")
	war.FileExtension = ".war"

	if keys, _ := FindDuplicates([]models.PhysicalMetadata{jar, war}); len(keys) != 0 {
		t.Errorf("FindDuplicates() keys = %v, want none for different extensions", keys)
	}
	if conflicts := DetectConflicts([]models.PhysicalMetadata{jar}, []models.PhysicalMetadata{war}); len(conflicts) != 0 {
		t.Errorf("DetectConflicts() = %+v, want none", conflicts)
	}

	upper := metadata(models.FeedTypeNuGet, "Acme", "1.0.0", "")
	upper.FileExtension = ".NUPKG"
	lower := metadata(models.FeedTypeNuGet, "acme", "1.0.0", "")
	lower.FileExtension = ".nupkg"
	if PackageIdentity(upper.Metadata) != PackageIdentity(lower.Metadata) {
		t.Errorf("NuGet identities differ: %s vs %s", PackageIdentity(upper.Metadata), PackageIdentity(lower.Metadata))
	}
}
