package models

// ScanConfig contains configuration for scanning a package cache
type ScanConfig struct {
	// Input/Output
	CacheDir  string
	OutputDir string // Manifest is skipped when empty

	// Catalog database path, skipped when empty
	CatalogPath string

	// Hash recorded for each file: md5, sha1, sha256 or sha512
	HashAlgorithm string

	// Manifest options
	Format       string   // yaml or json
	Compressions []string // gz, zst, xz
	Incremental  bool     // Merge with an existing manifest instead of replacing it

	// Signing
	GPGKeyPath    string
	GPGPassphrase string
	RSAKeyPath    string
	RSAPassphrase string
}

// ManifestConfig contains the manifest generator options derived from ScanConfig
type ManifestConfig struct {
	OutputDir    string
	Root         string
	Format       string
	Compressions []string
	Incremental  bool
}
