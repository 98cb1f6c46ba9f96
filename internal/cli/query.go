package cli

import (
	"errors"
	"fmt"

	"github.com/ralt/pkgmeta/internal/catalog"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/spf13/cobra"
)

// NewQueryCmd creates the query command
func NewQueryCmd(a *app) *cobra.Command {
	var (
		catalogPath string
		scheme      string
		version     string
	)

	cmd := &cobra.Command{
		Use:   "query <package-id>",
		Short: "List catalog entries for a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				return &models.PkgMetaError{
					Type: models.ErrInvalidConfig,
					Err:  fmt.Errorf("catalog is required"),
				}
			}

			parsers, err := a.parsers(scheme)
			if err != nil {
				return err
			}
			base, ok := parsers.TryParseID(args[0])
			if !ok {
				return &models.PkgMetaError{
					Type:    models.ErrPackageParse,
					Package: args[0],
					Err:     fmt.Errorf("no naming scheme recognizes the package ID: %w", models.ErrParse),
				}
			}

			cat, err := catalog.New(catalogPath, a.cfg.Naming.Wildcard)
			if err != nil {
				return &models.PkgMetaError{Type: models.ErrCatalog, Err: err}
			}
			defer cat.Close()

			var entries []catalog.Entry
			if version != "" {
				p, _ := parsers.ParserFor(base.FeedType)
				meta, err := p.ParseIDVersionExtension(args[0], version, "")
				if err != nil {
					return &models.PkgMetaError{Type: models.ErrPackageParse, Package: args[0], Err: err}
				}
				entries, err = cat.FindVersion(cmd.Context(), meta)
				if err != nil && !errors.Is(err, catalog.ErrNotFound) {
					return &models.PkgMetaError{Type: models.ErrCatalog, Package: args[0], Err: err}
				}
			} else {
				entries, err = cat.FindPackage(cmd.Context(), base)
				if err != nil {
					return &models.PkgMetaError{Type: models.ErrCatalog, Package: args[0], Err: err}
				}
			}

			if entries == nil {
				entries = []catalog.Entry{}
			}
			return writeRecord(cmd.OutOrStdout(), a.format, entries)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog database to query")
	cmd.Flags().StringVar(&scheme, "scheme", "", "Naming scheme to use (maven, nuget); all are tried when empty")
	cmd.Flags().StringVar(&version, "version", "", "Only list this version")

	return cmd
}
