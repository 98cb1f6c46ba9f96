package cli

import (
	"fmt"

	"github.com/ralt/pkgmeta/internal/config"
	"github.com/ralt/pkgmeta/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the global flags and the loaded configuration to subcommands
type app struct {
	configPath string
	verbose    bool
	format     string

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pkgmeta",
		Short: "Parse and catalog package identities from cache file names",
		Long: `Pkgmeta recognizes Maven and NuGet package identities in package IDs,
target file names and server cache file names, and derives the search
patterns and cache names used to store them.

Supported naming schemes:
  - Maven (Maven#group#artifact#version)
  - NuGet (Package.Id.1.2.3)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&a.format, "format", "yaml", "Output format (yaml, json)")

	// Add subcommands
	rootCmd.AddCommand(NewParseCmd(a))
	rootCmd.AddCommand(NewScanCmd(a))
	rootCmd.AddCommand(NewStageCmd(a))
	rootCmd.AddCommand(NewQueryCmd(a))

	return rootCmd
}

// setup loads the configuration and applies the logging level
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: err}
	}
	a.cfg = cfg

	switch a.format {
	case "yaml", "json":
	default:
		return &models.PkgMetaError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("unsupported output format %q", a.format),
		}
	}

	if a.verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return nil
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return &models.PkgMetaError{Type: models.ErrInvalidConfig, Err: err}
	}
	logrus.SetLevel(level)

	return nil
}
