package cli

import (
	"fmt"

	"github.com/ralt/pkgmeta/internal/models"
	"github.com/ralt/pkgmeta/internal/parser"
	"github.com/spf13/cobra"
)

// NewParseCmd creates the parse command and its id and file subcommands
func NewParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse a package ID or file name",
	}

	cmd.AddCommand(newParseIDCmd(a))
	cmd.AddCommand(newParseFileCmd(a))

	return cmd
}

func newParseIDCmd(a *app) *cobra.Command {
	var (
		scheme    string
		version   string
		extension string
	)

	cmd := &cobra.Command{
		Use:   "id <package-id>",
		Short: "Parse a package ID, optionally with a version and extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsers, err := a.parsers(scheme)
			if err != nil {
				return err
			}

			var record any
			if cmd.Flags().Changed("version") {
				record, err = firstMatch(parsers, args[0], func(p parser.Parser) (any, error) {
					return p.ParseIDVersionExtension(args[0], version, extension)
				})
			} else {
				record, err = firstMatch(parsers, args[0], func(p parser.Parser) (any, error) {
					return p.ParseID(args[0])
				})
			}
			if err != nil {
				return err
			}

			return writeRecord(cmd.OutOrStdout(), a.format, record)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "Naming scheme to use (maven, nuget); all are tried when empty")
	cmd.Flags().StringVar(&version, "version", "", "Package version")
	cmd.Flags().StringVar(&extension, "extension", "", "File extension including the leading period")

	return cmd
}

func newParseFileCmd(a *app) *cobra.Command {
	var (
		scheme string
		server bool
		size   int64
		hash   string
	)

	cmd := &cobra.Command{
		Use:   "file <filename>",
		Short: "Parse a target or server cache file name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsers, err := a.parsers(scheme)
			if err != nil {
				return err
			}
			physical := cmd.Flags().Changed("size") || cmd.Flags().Changed("hash")

			record, err := firstMatch(parsers, args[0], func(p parser.Parser) (any, error) {
				exts := a.cfg.ExtensionsFor(p.FeedType())
				switch {
				case server && physical:
					return p.ParseServerFilenamePhysical(args[0], exts, size, hash)
				case server:
					return p.ParseServerFilename(args[0], exts)
				case physical:
					return p.ParseFilenamePhysical(args[0], exts, size, hash)
				default:
					return p.ParseFilename(args[0], exts)
				}
			})
			if err != nil {
				return err
			}

			return writeRecord(cmd.OutOrStdout(), a.format, record)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "Naming scheme to use (maven, nuget); all are tried when empty")
	cmd.Flags().BoolVar(&server, "server", false, "Parse a server cache file name instead of a target file name")
	cmd.Flags().Int64Var(&size, "size", 0, "File size in bytes to attach to the result")
	cmd.Flags().StringVar(&hash, "hash", "", "File hash to attach to the result")

	return cmd
}

// parsers returns the configured parser chain, or only the named scheme
func (a *app) parsers(scheme string) (parser.Chain, error) {
	chain := a.cfg.Chain()
	if scheme == "" {
		return chain, nil
	}

	var feedType models.FeedType
	if err := feedType.UnmarshalText([]byte(scheme)); err != nil || feedType == models.FeedTypeUnknown {
		return nil, &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("unknown scheme %q", scheme)}
	}

	p, ok := chain.ParserFor(feedType)
	if !ok {
		return nil, &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: fmt.Errorf("scheme %q is not configured", scheme)}
	}
	return parser.Chain{p}, nil
}

// firstMatch returns the first successful parse. With a single parser its
// error is returned as is so the caller sees why the input was rejected.
func firstMatch(parsers parser.Chain, input string, parse func(parser.Parser) (any, error)) (any, error) {
	var lastErr error
	for _, p := range parsers {
		record, err := parse(p)
		if err == nil {
			return record, nil
		}
		lastErr = err
	}

	if len(parsers) == 1 {
		return nil, &models.PkgMetaError{Type: models.ErrPackageParse, Package: input, Err: lastErr}
	}
	return nil, &models.PkgMetaError{
		Type:    models.ErrPackageParse,
		Package: input,
		Err:     fmt.Errorf("no naming scheme recognizes the input: %w", models.ErrParse),
	}
}
