// Package catalog records scanned cache files in a sqlite database and
// answers search pattern queries against them
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("package not found in catalog")

// Entry is a cache file together with the metadata parsed from its name
type Entry struct {
	Path    string    `yaml:"path" json:"path"`
	AddedAt time.Time `yaml:"added_at" json:"added_at"`

	models.PhysicalMetadata `yaml:",inline"`
}

// Catalog manages the package database
type Catalog struct {
	db       *sql.DB
	mu       sync.RWMutex
	wildcard string
}

// New opens or creates the catalog at path. wildcard is the token used by
// the search patterns that will be passed to Find.
func New(path, wildcard string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if wildcard == "" {
		wildcard = "*"
	}

	return &Catalog{db: db, wildcard: wildcard}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS packages (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			feed_type TEXT NOT NULL,
			package_id TEXT NOT NULL,
			version TEXT NOT NULL,
			file_extension TEXT NOT NULL,
			version_delimiter TEXT NOT NULL,
			package_search_pattern TEXT NOT NULL,
			package_and_version_search_pattern TEXT NOT NULL,
			server_cache_file_name TEXT NOT NULL,
			target_file_name TEXT NOT NULL,
			size INTEGER NOT NULL,
			hash TEXT NOT NULL,
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_packages_name
		ON packages(name);

		CREATE INDEX IF NOT EXISTS idx_packages_hash
		ON packages(hash);
	`)
	return err
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Put records a cache file, replacing any previous entry for the same path
func (c *Catalog) Put(ctx context.Context, path string, pkg models.PhysicalMetadata) error {
	return c.PutAll(ctx, map[string]models.PhysicalMetadata{path: pkg})
}

// PutAll records several cache files in one transaction
func (c *Catalog) PutAll(ctx context.Context, entries map[string]models.PhysicalMetadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO packages (
			path, name, feed_type, package_id, version, file_extension,
			version_delimiter, package_search_pattern,
			package_and_version_search_pattern, server_cache_file_name,
			target_file_name, size, hash, added_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for path, pkg := range entries {
		_, err := stmt.ExecContext(ctx,
			path, filepath.Base(path), pkg.FeedType.String(), pkg.PackageID,
			pkg.Version, pkg.FileExtension, pkg.VersionDelimiter,
			pkg.PackageSearchPattern, pkg.PackageAndVersionSearchPattern,
			pkg.ServerCacheFileName, pkg.TargetFileName, pkg.Size, pkg.Hash, now)
		if err != nil {
			return fmt.Errorf("failed to record %s: %w", path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logrus.Debugf("Recorded %d catalog entries", len(entries))
	return nil
}

// Remove deletes the entry for a cache file
func (c *Catalog) Remove(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx, "DELETE FROM packages WHERE path = ?", path)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Find returns the entries of feedType whose cache file name matches
// pattern. NuGet names are matched case-insensitively.
func (c *Catalog) Find(ctx context.Context, feedType models.FeedType, pattern string) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	glob := c.globPattern(pattern)
	query := selectEntries + " WHERE feed_type = ? AND name GLOB ? ORDER BY name"
	if feedType == models.FeedTypeNuGet {
		glob = strings.ToLower(glob)
		query = selectEntries + " WHERE feed_type = ? AND lower(name) GLOB ? ORDER BY name"
	}

	rows, err := c.db.QueryContext(ctx, query, feedType.String(), glob)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// FindPackage returns every cached version of a package. Packages whose ID
// only starts with the same text, such as Acme.Web for Acme, are filtered out.
func (c *Catalog) FindPackage(ctx context.Context, base models.BaseMetadata) ([]Entry, error) {
	entries, err := c.Find(ctx, base.FeedType, base.PackageSearchPattern)
	if err != nil {
		return nil, err
	}

	var matched []Entry
	for _, e := range entries {
		if samePackage(e.BaseMetadata, base) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// FindVersion returns the cache files holding one package version. Names
// sharing the pattern prefix but belonging to another version, such as
// 1.0 against 1.0.1, are filtered out.
func (c *Catalog) FindVersion(ctx context.Context, meta models.Metadata) ([]Entry, error) {
	entries, err := c.Find(ctx, meta.FeedType, meta.PackageAndVersionSearchPattern)
	if err != nil {
		return nil, err
	}

	var matched []Entry
	for _, e := range entries {
		if sameVersion(e.Metadata, meta) {
			matched = append(matched, e)
		}
	}
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	return matched, nil
}

// Count returns the number of catalog entries
func (c *Catalog) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&n)
	return n, err
}

func samePackage(a, b models.BaseMetadata) bool {
	if a.FeedType != b.FeedType {
		return false
	}
	if a.FeedType == models.FeedTypeNuGet {
		return strings.EqualFold(a.PackageID, b.PackageID)
	}
	return a.PackageID == b.PackageID
}

func sameVersion(a, b models.Metadata) bool {
	if !samePackage(a.BaseMetadata, b.BaseMetadata) {
		return false
	}
	if a.FeedType == models.FeedTypeNuGet {
		return strings.EqualFold(a.Version, b.Version)
	}
	return a.Version == b.Version
}

// globPattern turns a search pattern into a SQLite GLOB expression. The
// literal parts are bracket-escaped so only the wildcard token expands.
func (c *Catalog) globPattern(pattern string) string {
	parts := strings.Split(pattern, c.wildcard)
	for i, part := range parts {
		parts[i] = escapeGlob(part)
	}
	return strings.Join(parts, "*")
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

const selectEntries = `
	SELECT path, feed_type, package_id, version, file_extension,
		version_delimiter, package_search_pattern,
		package_and_version_search_pattern, server_cache_file_name,
		target_file_name, size, hash, added_at
	FROM packages`

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			feedType string
			addedAt  int64
		)
		err := rows.Scan(
			&e.Path, &feedType, &e.PackageID, &e.Version, &e.FileExtension,
			&e.VersionDelimiter, &e.PackageSearchPattern,
			&e.PackageAndVersionSearchPattern, &e.ServerCacheFileName,
			&e.TargetFileName, &e.Size, &e.Hash, &addedAt)
		if err != nil {
			return nil, err
		}
		if err := e.FeedType.UnmarshalText([]byte(feedType)); err != nil {
			return nil, err
		}
		e.AddedAt = time.Unix(addedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
