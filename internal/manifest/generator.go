package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/signer"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/sirupsen/logrus"
)

// Generator writes manifests and their signatures
type Generator struct {
	signer    signer.Signer
	rsaSigner signer.RSASigner
	now       func() time.Time
}

// NewGenerator creates a new manifest generator. Either signer may be nil.
func NewGenerator(s signer.Signer, rsaSigner signer.RSASigner) *Generator {
	return &Generator{
		signer:    s,
		rsaSigner: rsaSigner,
		now:       time.Now,
	}
}

// Generate writes the manifest for packages into config.OutputDir
func (g *Generator) Generate(ctx context.Context, config *models.ManifestConfig, packages []models.PhysicalMetadata) error {
	logrus.Info("Generating package manifest...")

	if err := g.ValidatePackages(packages); err != nil {
		return err
	}
	if err := utils.EnsureDir(config.OutputDir); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if config.Incremental {
		existing, err := g.ParseExisting(config)
		if err != nil {
			return fmt.Errorf("failed to read existing manifest: %w", err)
		}
		packages = mergePackages(existing, packages)
	}

	all := make([]models.PhysicalMetadata, len(packages))
	copy(all, packages)
	SortPackages(all)

	m := &Manifest{
		Version:     FormatVersion,
		GeneratedAt: g.now().UTC(),
		Root:        config.Root,
		Packages:    all,
	}

	data, err := Encode(m, config.Format)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	digest, err := utils.CalculateChecksum(data, "sha256")
	if err != nil {
		return err
	}
	logrus.Debugf("Manifest digest: sha256:%s", digest)

	name := FileName(config.Format)
	written := []string{name}
	if err := utils.WriteFile(filepath.Join(config.OutputDir, name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	for _, comp := range config.Compressions {
		if err := ctx.Err(); err != nil {
			return err
		}

		compressed, err := utils.Compress(data, comp)
		if err != nil {
			return fmt.Errorf("failed to compress manifest: %w", err)
		}

		compName := name + "." + comp
		if err := utils.WriteFile(filepath.Join(config.OutputDir, compName), compressed, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", compName, err)
		}
		written = append(written, compName)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	signed, err := g.sign(config.OutputDir, name, data)
	if err != nil {
		return err
	}
	written = append(written, signed...)

	infos, err := CalculateFileInfos(config.OutputDir, written)
	if err != nil {
		return err
	}
	sums := GenerateSumsFile(config.Root, m.GeneratedAt, infos)
	if err := utils.WriteFile(filepath.Join(config.OutputDir, SumsFileName), sums, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", SumsFileName, err)
	}

	logrus.Infof("Generated %s (%d packages)", name, len(all))
	return nil
}

// sign writes the OpenPGP and RSA signatures of the manifest and returns
// the names of the files it created
func (g *Generator) sign(dir, name string, data []byte) ([]string, error) {
	var written []string

	if g.signer != nil {
		detached, err := g.signer.SignDetached(data)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: name, Err: err}
		}
		if err := utils.WriteFile(filepath.Join(dir, name+".asc"), detached, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s.asc: %w", name, err)
		}

		cleartext, err := g.signer.SignCleartext(data)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: name, Err: err}
		}
		inline := name + ".signed"
		if err := utils.WriteFile(filepath.Join(dir, inline), cleartext, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", inline, err)
		}

		pub, err := g.signer.GetPublicKey()
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: name, Err: err}
		}
		if err := utils.WriteFile(filepath.Join(dir, "pubkey.asc"), pub, 0644); err != nil {
			return nil, fmt.Errorf("failed to write pubkey.asc: %w", err)
		}

		written = append(written, name+".asc", inline)
		logrus.Info("Manifest signed with OpenPGP key")
	}

	if g.rsaSigner != nil {
		sig, err := g.rsaSigner.SignRSA(data)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: name, Err: err}
		}
		if err := utils.WriteFile(filepath.Join(dir, name+".sig"), sig, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s.sig: %w", name, err)
		}

		pub, err := g.rsaSigner.GetPublicKey()
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: name, Err: err}
		}
		if err := utils.WriteFile(filepath.Join(dir, "pubkey.pem"), pub, 0644); err != nil {
			return nil, fmt.Errorf("failed to write pubkey.pem: %w", err)
		}

		written = append(written, name+".sig")
		logrus.Info("Manifest signed with RSA key")
	}

	if g.signer == nil && g.rsaSigner == nil {
		logrus.Warn("No signer configured, manifest will be unsigned")
	}

	return written, nil
}

// ValidatePackages checks that every package carries a complete identity
func (g *Generator) ValidatePackages(packages []models.PhysicalMetadata) error {
	for _, pkg := range packages {
		if pkg.FeedType == models.FeedTypeUnknown {
			return &models.PkgMetaError{Type: models.ErrManifest, Package: pkg.ServerCacheFileName, Err: fmt.Errorf("unknown feed type")}
		}
		if pkg.PackageID == "" {
			return &models.PkgMetaError{Type: models.ErrManifest, Package: pkg.ServerCacheFileName, Err: fmt.Errorf("missing package id")}
		}
		if pkg.Version == "" {
			return &models.PkgMetaError{Type: models.ErrManifest, Package: pkg.PackageID, Err: fmt.Errorf("missing version")}
		}
		if pkg.Hash == "" {
			return &models.PkgMetaError{Type: models.ErrManifest, Package: pkg.PackageID, Err: fmt.Errorf("missing hash")}
		}
	}
	return nil
}

// ParseExisting reads the manifest currently in config.OutputDir. A missing
// manifest yields no packages. When an OpenPGP signer is configured and a
// detached signature exists, the signature must verify.
func (g *Generator) ParseExisting(config *models.ManifestConfig) ([]models.PhysicalMetadata, error) {
	path := filepath.Join(config.OutputDir, FileName(config.Format))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("No existing manifest at %s", path)
			return nil, nil
		}
		return nil, err
	}

	if g.signer != nil {
		sig, err := os.ReadFile(path + ".asc")
		switch {
		case err == nil:
			if err := g.signer.VerifyDetached(data, sig); err != nil {
				return nil, &models.PkgMetaError{Type: models.ErrSigning, Package: path, Err: err}
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}

	m, err := Decode(data, config.Format)
	if err != nil {
		return nil, &models.PkgMetaError{Type: models.ErrManifest, Package: path, Err: err}
	}

	logrus.Infof("Loaded %d packages from existing manifest", len(m.Packages))
	return m.Packages, nil
}

// mergePackages keeps existing entries unless a new package shares their
// identity, in which case the new one replaces them
func mergePackages(existing, packages []models.PhysicalMetadata) []models.PhysicalMetadata {
	for _, pkg := range utils.DetectConflicts(existing, packages) {
		logrus.Warnf("Replacing manifest entry for %s %s", pkg.PackageID, pkg.Version)
	}

	replaced := make(map[string]bool, len(packages))
	for _, pkg := range packages {
		replaced[utils.PackageIdentity(pkg.Metadata)] = true
	}

	merged := make([]models.PhysicalMetadata, 0, len(existing)+len(packages))
	for _, pkg := range existing {
		if !replaced[utils.PackageIdentity(pkg.Metadata)] {
			merged = append(merged, pkg)
		}
	}
	return append(merged, packages...)
}
