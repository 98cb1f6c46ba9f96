package maven

import (
	"errors"
	"testing"

	"github.com/ralt/pkgmeta/internal/models"
)

func newTestParser() *Parser {
	return NewParser(DefaultConfig())
}

func TestParseID(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseID("Maven#com.google.guava#guava")
	if err != nil {
		t.Fatalf("ParseID() error = %v", err)
	}

	if meta.PackageID != "Maven#com.google.guava#guava" {
		t.Errorf("PackageID = %q, want Maven#com.google.guava#guava", meta.PackageID)
	}
	if meta.FeedType != models.FeedTypeMaven {
		t.Errorf("FeedType = %s, want maven", meta.FeedType)
	}
	if meta.PackageSearchPattern != "Maven#com.google.guava#guava*" {
		t.Errorf("PackageSearchPattern = %q", meta.PackageSearchPattern)
	}

	// Re-parsing the normalized ID yields the same record
	again, err := p.ParseID(meta.PackageID)
	if err != nil {
		t.Fatalf("ParseID() on normalized id error = %v", err)
	}
	if again != meta {
		t.Errorf("ParseID() not idempotent: %+v != %+v", again, meta)
	}
}

func TestParseIDRejects(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		id    string
		cause models.ParseCause
	}{
		{"Acme.Web", models.CauseDelimiterCount},
		{"Maven#com.google.guava", models.CauseDelimiterCount},
		{"Maven#com.google.guava#guava#23.0", models.CauseDelimiterCount},
		{"Maven#com#google#guava", models.CauseDelimiterCount},
		{"NuGet#com.google.guava#guava", models.CausePrefixMismatch},
		{"maven#com.google.guava#guava", models.CausePrefixMismatch},
		{"Maven##guava", models.CauseMalformedIdentity},
		{"", models.CauseDelimiterCount},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := p.ParseID(tt.id)
			if err == nil {
				t.Fatalf("ParseID(%q) succeeded, want error", tt.id)
			}

			var pe *models.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %v is not a *models.ParseError", err)
			}
			if pe.Cause != tt.cause {
				t.Errorf("cause = %s, want %s", pe.Cause, tt.cause)
			}
			if !errors.Is(err, models.ErrParse) {
				t.Errorf("errors.Is(err, ErrParse) = false")
			}

			if _, ok := p.TryParseID(tt.id); ok {
				t.Errorf("TryParseID(%q) = true, want false", tt.id)
			}
		})
	}
}

func TestParseIDVersionExtension(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseIDVersionExtension("Maven#com.google.guava#guava", "23.3-jre", ".jar")
	if err != nil {
		t.Fatalf("ParseIDVersionExtension() error = %v", err)
	}

	want := models.Metadata{
		BaseMetadata: models.BaseMetadata{
			PackageID:            "Maven#com.google.guava#guava",
			FeedType:             models.FeedTypeMaven,
			PackageSearchPattern: "Maven#com.google.guava#guava*",
		},
		Version:                        "23.3-jre",
		FileExtension:                  ".jar",
		PackageAndVersionSearchPattern: "Maven#com.google.guava#guava#23.3-jre*",
		ServerCacheFileName:            "Maven#com.google.guava#guava#23.3-jre_",
		TargetFileName:                 "Maven#com.google.guava#guava#23.3-jre.jar",
		VersionDelimiter:               "#",
	}
	if meta != want {
		t.Errorf("ParseIDVersionExtension() =\n%+v\nwant\n%+v", meta, want)
	}

	if _, ok := p.TryParseIDVersionExtension("Maven#com.google.guava#guava", "1#2", ".jar"); ok {
		t.Error("version containing the delimiter should be rejected")
	}
	if _, ok := p.TryParseIDVersionExtension("Maven#com.google.guava#guava", "", ".jar"); ok {
		t.Error("empty version should be rejected")
	}
}

func TestParseNuGetIDWithMaven(t *testing.T) {
	p := newTestParser()

	if _, err := p.ParseIDVersionExtensionPhysical("Acme.Web", "1.0.0", "", 0, "whatever"); err == nil {
		t.Error("ParseIDVersionExtensionPhysical() accepted a NuGet id")
	}
}

func TestParseIDVersionExtensionPhysical(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseIDVersionExtensionPhysical("Maven#org.slf4j#slf4j-api", "2.0.9", ".jar", 41125, "abc123")
	if err != nil {
		t.Fatalf("ParseIDVersionExtensionPhysical() error = %v", err)
	}
	if meta.Size != 41125 || meta.Hash != "abc123" {
		t.Errorf("size/hash = %d/%q, want 41125/abc123", meta.Size, meta.Hash)
	}
	if meta.TargetFileName != "Maven#org.slf4j#slf4j-api#2.0.9.jar" {
		t.Errorf("TargetFileName = %q", meta.TargetFileName)
	}
}

func TestParseServerFilename(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseServerFilename(
		`C:\Maven#com.google.guava#guava#23.3-jre_9822965F2883AD43AD79DA4E8795319F.jar`,
		[]string{".jar"})
	if err != nil {
		t.Fatalf("ParseServerFilename() error = %v", err)
	}

	if meta.FileExtension != ".jar" {
		t.Errorf("FileExtension = %q, want .jar", meta.FileExtension)
	}
	if meta.PackageID != "Maven#com.google.guava#guava" {
		t.Errorf("PackageID = %q", meta.PackageID)
	}
	if meta.Version != "23.3-jre" {
		t.Errorf("Version = %q, want 23.3-jre", meta.Version)
	}
	if meta.FeedType != models.FeedTypeMaven {
		t.Errorf("FeedType = %s, want maven", meta.FeedType)
	}
	if meta.ServerCacheFileName != "Maven#com.google.guava#guava#23.3-jre_" {
		t.Errorf("ServerCacheFileName = %q", meta.ServerCacheFileName)
	}
}

func TestParseServerFilenamePhysical(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseServerFilenamePhysical(
		`C:\Maven#com.google.guava#guava#23.3-jre_9822965F2883AD43AD79DA4E8795319F.jar`,
		[]string{".jar"}, 123, "hash")
	if err != nil {
		t.Fatalf("ParseServerFilenamePhysical() error = %v", err)
	}

	if meta.PackageID != "Maven#com.google.guava#guava" || meta.Version != "23.3-jre" {
		t.Errorf("id/version = %q/%q", meta.PackageID, meta.Version)
	}
	if meta.Size != 123 {
		t.Errorf("Size = %d, want 123", meta.Size)
	}
	if meta.Hash != "hash" {
		t.Errorf("Hash = %q, want hash", meta.Hash)
	}
}

// A period between artifact and version breaks the four part split.
func TestParseServerFilenamePeriodBeforeVersion(t *testing.T) {
	p := newTestParser()

	filePath := `C:\Temp\Files\feeds-maven\Maven#com.google.guava#guava.22.0_3C7672DD8977C04DBD1F8BA70E1AF190.jar`

	_, err := p.ParseServerFilenamePhysical(filePath, []string{".jar"}, 123, "hash")
	if err == nil {
		t.Fatal("ParseServerFilenamePhysical() succeeded, want error")
	}

	var pe *models.ParseError
	if !errors.As(err, &pe) || pe.Cause != models.CauseDelimiterCount {
		t.Errorf("error = %v, want delimiter count ParseError", err)
	}
	if pe != nil && pe.Input != filePath {
		t.Errorf("error input = %q, want the file path", pe.Input)
	}

	if _, ok := p.TryParseServerFilename(filePath, []string{".jar"}); ok {
		t.Error("TryParseServerFilename() = true, want false")
	}
}

func TestParseFilename(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseFilename(
		`C:\Maven#com.google.guava#guava#22.0.jar-e55fcd51-6081-4300-91a3-117b7930c023`,
		[]string{".jar"})
	if err != nil {
		t.Fatalf("ParseFilename() error = %v", err)
	}

	if meta.FileExtension != ".jar" {
		t.Errorf("FileExtension = %q, want .jar", meta.FileExtension)
	}
	if meta.PackageID != "Maven#com.google.guava#guava" {
		t.Errorf("PackageID = %q", meta.PackageID)
	}
	if meta.Version != "22.0" {
		t.Errorf("Version = %q, want 22.0", meta.Version)
	}
	if meta.TargetFileName != "Maven#com.google.guava#guava#22.0.jar" {
		t.Errorf("TargetFileName = %q", meta.TargetFileName)
	}
}

func TestParseFilenamePhysical(t *testing.T) {
	p := newTestParser()

	meta, err := p.ParseFilenamePhysical("Maven#junit#junit#4.13.2.jar", []string{".jar"}, 384581, "sha")
	if err != nil {
		t.Fatalf("ParseFilenamePhysical() error = %v", err)
	}
	if meta.Size != 384581 || meta.Hash != "sha" {
		t.Errorf("size/hash = %d/%q", meta.Size, meta.Hash)
	}
}

func TestParseFilenameRejects(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name     string
		filename string
		exts     []string
		cause    models.ParseCause
	}{
		{"nuget target", `C:\package.suffix.1.0.0.zip-e55fcd51-6081-4300-91a3-117b7930c023`, []string{".jar"}, models.CauseUnknownExtension},
		{"nuget target with zip", "package.suffix.1.0.0.zip", []string{".zip"}, models.CauseDelimiterCount},
		{"missing version", "Maven#com.google.guava#guava.jar", []string{".jar"}, models.CauseDelimiterCount},
		{"extra delimiter", "Maven#com#google#guava#22.0.jar", []string{".jar"}, models.CauseDelimiterCount},
		{"wrong prefix", "Ivy#com.google.guava#guava#22.0.jar", []string{".jar"}, models.CausePrefixMismatch},
		{"empty version", "Maven#com.google.guava#guava#.jar", []string{".jar"}, models.CauseMalformedIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseFilename(tt.filename, tt.exts)
			var pe *models.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseFilename() error = %v, want *models.ParseError", err)
			}
			if pe.Cause != tt.cause {
				t.Errorf("cause = %s, want %s", pe.Cause, tt.cause)
			}
			if _, ok := p.TryParseFilename(tt.filename, tt.exts); ok {
				t.Error("TryParseFilename() = true, want false")
			}
		})
	}
}

func TestCustomTokens(t *testing.T) {
	p := NewParser(Config{FeedPrefix: "Java", Delimiter: "|"})

	meta, err := p.ParseServerFilename("Java|org.example|lib|1.0_TOKEN.war", []string{".war"})
	if err != nil {
		t.Fatalf("ParseServerFilename() error = %v", err)
	}
	if meta.PackageID != "Java|org.example|lib" || meta.Version != "1.0" {
		t.Errorf("id/version = %q/%q", meta.PackageID, meta.Version)
	}
	if meta.PackageAndVersionSearchPattern != "Java|org.example|lib|1.0*" {
		t.Errorf("PackageAndVersionSearchPattern = %q", meta.PackageAndVersionSearchPattern)
	}
	if meta.VersionDelimiter != "|" {
		t.Errorf("VersionDelimiter = %q", meta.VersionDelimiter)
	}
}
