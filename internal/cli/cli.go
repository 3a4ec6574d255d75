package cli

import (
	"fmt"
	"os"

	"github.com/pfrederiksen/subwatch/internal/catalog"
	"github.com/pfrederiksen/subwatch/internal/config"
	"github.com/pfrederiksen/subwatch/internal/logger"
	"github.com/pfrederiksen/subwatch/internal/reaction"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig   string
	flagSaveDir  string
	flagLogLevel string
	flagFormat   string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subwatch",
		Short: "Manage product category subscriptions for a chat bot",
		Long: `subwatch keeps per-user product category subscriptions, each with an optional
price ceiling. Users subscribe through chat commands or by reacting to the designated
subscription message. State is written to disk after every change.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&flagSaveDir, "save-dir", "", "Directory for the state file (overrides config)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSubCmd())
	cmd.AddCommand(newCatalogCmd())

	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}

// loadConfig reads the config file, applies flag overrides, validates, and installs the
// default logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagSaveDir != "" {
		cfg.SaveDir = flagSaveDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))
	return cfg, nil
}

// openRegistry loads the catalog and the persisted subscriptions
func openRegistry(cfg *config.Config, opts ...subscription.Option) (*subscription.Registry, error) {
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, errors.Wrap(err, "loading catalog")
	}
	if cat.Len() == 0 {
		return nil, errors.New("catalog is empty")
	}

	store, err := cfg.OpenStorage()
	if err != nil {
		return nil, errors.Wrap(err, "initializing storage")
	}

	return subscription.Open(cat, store, opts...)
}

func newBinding(cfg *config.Config, cat *catalog.Catalog) (*reaction.Binding, error) {
	glyphs := cfg.Glyphs
	if len(glyphs) == 0 {
		glyphs = reaction.DefaultGlyphs
	}
	return reaction.NewBinding(cat, glyphs)
}

func outputFormat() (OutputFormat, error) {
	format := OutputFormat(flagFormat)
	if format != FormatText && format != FormatJSON {
		return "", errors.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}
	return format, nil
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", string(FormatText), "Output format: text or json")
}
