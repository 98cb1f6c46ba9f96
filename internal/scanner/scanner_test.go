package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScan(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"Maven#com.google.guava#guava#23.3-jre_9822965F2883AD43AD79DA4E8795319F.jar": "jar",
		"nested/package.suffix.1.0.0_9822965F2883AD43AD79DA4E8795319F.zip":           "zip!",
		"notes.txt":                            "ignored",
		"package.suffix.1.0.0_ABC.zip.partial": "ignored",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	s := NewFileSystemScanner([]string{".jar", ".zip"})
	found, err := s.Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("Scan() found %d files, want 2: %+v", len(found), found)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })

	if found[0].Size != 3 {
		t.Errorf("jar size = %d, want 3", found[0].Size)
	}
	if found[1].Size != 4 {
		t.Errorf("zip size = %d, want 4", found[1].Size)
	}
	if filepath.Base(found[1].Path) != found[1].Name {
		t.Errorf("Path %q does not end with Name %q", found[1].Path, found[1].Name)
	}
}

func TestScanCancelled(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.jar"), []byte("x"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileSystemScanner([]string{".jar"}).Scan(ctx, dir); err == nil {
		t.Error("Scan() with cancelled context succeeded, want error")
	}
}

func TestScanMissingDir(t *testing.T) {
	s := NewFileSystemScanner([]string{".jar"})
	if _, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Scan() of a missing directory succeeded, want error")
	}
}
