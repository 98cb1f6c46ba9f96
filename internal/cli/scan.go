package cli

import (
	"context"
	"fmt"

	"github.com/ralt/pkgmeta/internal/catalog"
	"github.com/ralt/pkgmeta/internal/manifest"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
	"github.com/ralt/pkgmeta/internal/scanner"
	"github.com/ralt/pkgmeta/internal/signer"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// scanReport is the output of the scan command
type scanReport struct {
	Packages     []models.PhysicalMetadata `yaml:"packages" json:"packages"`
	Unrecognized []string                  `yaml:"unrecognized,omitempty" json:"unrecognized,omitempty"`
	Duplicates   map[string][]string       `yaml:"duplicates,omitempty" json:"duplicates,omitempty"`
}

// NewScanCmd creates the scan command
func NewScanCmd(a *app) *cobra.Command {
	var config models.ScanConfig

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a package cache directory",
		Long: `Walks a cache directory, parses every server cache file name and
computes its size and SHA-256. Results can be recorded in a catalog
database and written to a manifest with compressed and signed variants.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateScanConfig(a, &config); err != nil {
				return err
			}

			logrus.Info("Starting cache scan...")
			logrus.Debugf("Configuration: %+v", config)

			report, err := runScan(cmd.Context(), a, &config)
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), a.format, report)
		},
	}

	// Input/Output flags
	cmd.Flags().StringVarP(&config.CacheDir, "cache-dir", "c", "", "Cache directory to scan")
	cmd.Flags().StringVarP(&config.OutputDir, "output-dir", "o", "", "Manifest output directory (no manifest when empty)")
	cmd.Flags().StringVar(&config.CatalogPath, "catalog", "", "Catalog database to update (no catalog when empty)")
	cmd.Flags().StringVar(&config.HashAlgorithm, "hash-algorithm", "sha256", "Hash recorded per file (md5, sha1, sha256, sha512)")

	// Manifest flags
	cmd.Flags().StringVar(&config.Format, "manifest-format", "", "Manifest format (yaml, json); defaults to the configured format")
	cmd.Flags().StringSliceVar(&config.Compressions, "compress", nil, "Manifest compressions (gz, zst, xz); defaults to the configured list")
	cmd.Flags().BoolVar(&config.Incremental, "incremental", false, "Merge into the existing manifest instead of replacing it")

	// Signing flags
	cmd.Flags().StringVarP(&config.GPGKeyPath, "gpg-key", "k", "", "Path to GPG private key")
	cmd.Flags().StringVarP(&config.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")
	cmd.Flags().StringVar(&config.RSAKeyPath, "rsa-key", "", "Path to PEM RSA private key")
	cmd.Flags().StringVar(&config.RSAPassphrase, "rsa-passphrase", "", "RSA key passphrase")

	return cmd
}

func validateScanConfig(a *app, config *models.ScanConfig) error {
	if config.CacheDir == "" {
		return &models.PkgMetaError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("cache-dir is required"),
		}
	}

	if config.Format == "" {
		config.Format = a.cfg.Manifest.Format
	}
	if config.Compressions == nil {
		config.Compressions = a.cfg.Manifest.Compressions
	}

	switch config.Format {
	case "yaml", "json":
	default:
		return &models.PkgMetaError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unsupported manifest format %q", config.Format),
		}
	}

	return nil
}

func runScan(ctx context.Context, a *app, config *models.ScanConfig) (*scanReport, error) {
	// Step 1: Find candidate files
	exts := a.cfg.Extensions()
	logrus.Infof("Scanning directory: %s", config.CacheDir)
	sc := scanner.NewFileSystemScanner(exts)
	files, err := sc.Scan(ctx, config.CacheDir)
	if err != nil {
		return nil, &models.PkgMetaError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	// Step 2: Parse server cache file names
	chain := a.cfg.Chain()
	report := &scanReport{Packages: []models.PhysicalMetadata{}}
	paths := make(map[string]models.PhysicalMetadata)

	for _, file := range files {
		meta, ok := a.parseServerName(chain, file.Name)
		if !ok {
			logrus.Warnf("Unrecognized cache file: %s", file.Path)
			report.Unrecognized = append(report.Unrecognized, file.Path)
			continue
		}

		checksums, err := utils.CalculateChecksums(file.Path)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrFileOp, Package: file.Path, Err: err}
		}

		hash, err := checksums.Get(config.HashAlgorithm)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: err}
		}

		pkg := parser.Attach(meta, checksums.Size, hash)
		logrus.Debugf("Parsed %s package %s %s from %s", pkg.FeedType, pkg.PackageID, pkg.Version, file.Name)
		report.Packages = append(report.Packages, pkg)
		paths[file.Path] = pkg
	}

	if len(report.Packages) == 0 {
		logrus.Warn("No packages found in cache directory")
	} else {
		logrus.Infof("Found %d packages", len(report.Packages))
	}

	// Step 3: Report duplicate identities
	keys, groups := utils.FindDuplicates(report.Packages)
	if len(keys) > 0 {
		report.Duplicates = make(map[string][]string, len(keys))
	}
	for _, key := range keys {
		for _, pkg := range groups[key] {
			report.Duplicates[key] = append(report.Duplicates[key], pkg.Hash)
		}
		logrus.Warnf("Package %s is cached %d times", key, len(groups[key]))
	}

	// Step 4: Update the catalog
	if config.CatalogPath != "" {
		cat, err := catalog.New(config.CatalogPath, a.cfg.Naming.Wildcard)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrCatalog, Err: err}
		}
		defer cat.Close()

		if err := cat.PutAll(ctx, paths); err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrCatalog, Err: err}
		}
		logrus.Infof("Catalog updated: %s", config.CatalogPath)
	}

	// Step 5: Write the manifest
	if config.OutputDir != "" {
		if err := writeManifest(ctx, config, report.Packages); err != nil {
			return nil, err
		}
		logrus.Infof("Output directory: %s", config.OutputDir)
	}

	logrus.Info("Cache scan completed successfully!")
	return report, nil
}

func writeManifest(ctx context.Context, config *models.ScanConfig, packages []models.PhysicalMetadata) error {
	var gpgSigner signer.Signer
	var rsaSigner signer.RSASigner

	if config.GPGKeyPath != "" {
		s, err := signer.NewGPGSigner(config.GPGKeyPath, config.GPGPassphrase)
		if err != nil {
			return &models.PkgMetaError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		gpgSigner = s
		logrus.Info("GPG signer initialized")
	}

	if config.RSAKeyPath != "" {
		s, err := signer.NewPEMRSASigner(config.RSAKeyPath, config.RSAPassphrase)
		if err != nil {
			return &models.PkgMetaError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize RSA signer: %w", err),
			}
		}
		rsaSigner = s
		logrus.Info("RSA signer initialized")
	}

	gen := manifest.NewGenerator(gpgSigner, rsaSigner)
	err := gen.Generate(ctx, &models.ManifestConfig{
		OutputDir:    config.OutputDir,
		Root:         config.CacheDir,
		Format:       config.Format,
		Compressions: config.Compressions,
		Incremental:  config.Incremental,
	}, packages)
	if err != nil {
		return &models.PkgMetaError{
			Type: models.ErrManifest,
			Err:  fmt.Errorf("failed to generate manifest: %w", err),
		}
	}

	return nil
}

// parseServerName probes each scheme with its own candidate extensions, so
// a scheme never accepts a file type it does not publish
func (a *app) parseServerName(chain parser.Chain, name string) (models.Metadata, bool) {
	for _, p := range chain {
		meta, err := p.ParseServerFilename(name, a.cfg.ExtensionsFor(p.FeedType()))
		if err == nil {
			return meta, true
		}
		logrus.Debugf("%s parser rejected cache file %s: %v", p.FeedType(), name, err)
	}
	return models.Metadata{}, false
}
