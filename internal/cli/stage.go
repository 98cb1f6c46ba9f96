package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ralt/pkgmeta/internal/catalog"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
	"github.com/ralt/pkgmeta/internal/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// stagedFile is the output of the stage command
type stagedFile struct {
	Path     string `yaml:"path" json:"path"`
	Existing bool   `yaml:"existing" json:"existing"`

	models.PhysicalMetadata `yaml:",inline"`
}

// NewStageCmd creates the stage command
func NewStageCmd(a *app) *cobra.Command {
	var (
		cacheDir    string
		catalogPath string
		scheme      string
		hashAlgo    string
	)

	cmd := &cobra.Command{
		Use:   "stage <file>",
		Short: "Copy a package file into the cache under its server cache name",
		Long: `Parses the target file name of a package and copies it into the cache
directory as <server cache file name><token><extension>. Nothing is copied
when the cache already holds a file with the same content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cacheDir == "" {
				return &models.PkgMetaError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("cache-dir is required"),
				}
			}

			parsers, err := a.parsers(scheme)
			if err != nil {
				return err
			}

			staged, err := stageFile(cmd.Context(), a, parsers, args[0], cacheDir, catalogPath, hashAlgo)
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), a.format, staged)
		},
	}

	cmd.Flags().StringVarP(&cacheDir, "cache-dir", "c", "", "Cache directory to copy into")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog database to update")
	cmd.Flags().StringVar(&scheme, "scheme", "", "Naming scheme to use (maven, nuget); all are tried when empty")
	cmd.Flags().StringVar(&hashAlgo, "hash-algorithm", "sha256", "Hash recorded for the file (md5, sha1, sha256, sha512)")

	return cmd
}

func stageFile(ctx context.Context, a *app, parsers parser.Chain, src, cacheDir, catalogPath, hashAlgo string) (*stagedFile, error) {
	var (
		p    parser.Parser
		meta models.Metadata
	)
	for _, candidate := range parsers {
		m, ok := candidate.TryParseFilename(src, a.cfg.ExtensionsFor(candidate.FeedType()))
		if ok {
			p, meta = candidate, m
			break
		}
	}
	if p == nil {
		return nil, &models.PkgMetaError{
			Type:    models.ErrPackageParse,
			Package: src,
			Err:     fmt.Errorf("no naming scheme recognizes the file name: %w", models.ErrParse),
		}
	}

	checksums, err := utils.CalculateChecksums(src)
	if err != nil {
		return nil, &models.PkgMetaError{Type: models.ErrFileOp, Package: src, Err: err}
	}
	hash, err := checksums.Get(hashAlgo)
	if err != nil {
		return nil, &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: err}
	}
	pkg := parser.Attach(meta, checksums.Size, hash)

	candidates, err := utils.FindStaged(cacheDir, meta.ServerCacheFileName+"*"+meta.FileExtension)
	if err != nil {
		return nil, &models.PkgMetaError{Type: models.ErrFileOp, Package: src, Err: err}
	}

	existing, needsCopy, err := utils.ShouldStage(src, checksums.SHA256, candidates)
	if err != nil {
		return nil, &models.PkgMetaError{Type: models.ErrFileOp, Package: src, Err: err}
	}

	staged := &stagedFile{Path: existing, Existing: !needsCopy, PhysicalMetadata: pkg}
	if needsCopy {
		name := meta.ServerCacheFileName + cacheToken() + meta.FileExtension
		staged.Path = filepath.Join(cacheDir, name)

		// The cache name must read back as the same package
		if _, err := p.ParseServerFilename(name, []string{meta.FileExtension}); err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrPackageParse, Package: name, Err: err}
		}

		if err := utils.CopyFile(src, staged.Path); err != nil {
			os.Remove(staged.Path)
			return nil, &models.PkgMetaError{Type: models.ErrFileOp, Package: src, Err: err}
		}
		logrus.Infof("Staged %s as %s", src, staged.Path)
	} else {
		logrus.Infof("%s is already cached as %s", src, existing)
	}

	if catalogPath != "" {
		cat, err := catalog.New(catalogPath, a.cfg.Naming.Wildcard)
		if err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrCatalog, Err: err}
		}
		defer cat.Close()

		if err := cat.Put(ctx, staged.Path, pkg); err != nil {
			return nil, &models.PkgMetaError{Type: models.ErrCatalog, Package: staged.Path, Err: err}
		}
	}

	return staged, nil
}

// cacheToken returns an upper-case hexadecimal token unique to one cache file
func cacheToken() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
