package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"class-remapper/internal/config"
	"class-remapper/internal/logging"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configFile string
	noColor    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "class-remapper",
		Short: "Rename classes, fields and methods inside JVM containers",
		Long: `class-remapper rewrites every compiled class of a jar or zip container,
translating class, field and method names between two naming schemes
described by mapping documents. Other entries are copied unchanged and the
output is byte-for-byte reproducible.

Settings are read from remapper.yaml (or --config), REMAPPER_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./remapper.yaml when present)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("log-dev", false, "human-readable development logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(newRemapCommand(opts))
	cmd.AddCommand(newCheckCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// loadConfig resolves the layered configuration for cmd.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(config.LoadOptions{File: o.configFile, Flags: cmd.Flags()})
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Development)
}

func execute(ctx context.Context, args []string) error {
	cmd := newRootCommand()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

		return err
	}

	return nil
}
