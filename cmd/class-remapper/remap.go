package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"class-remapper/internal/config"
	"class-remapper/internal/metadata"
	"class-remapper/internal/remap"
)

func newRemapCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remap [input output]",
		Short: "Rewrite a container with renamed classes and members",
		Long: `Rewrite every class of the input container according to the mapping
documents and write the result to the output container.

Library containers (every .jar and .zip under --libs) are never rewritten;
they only supply superclass and interface data so that inherited fields and
methods are renamed through the class that declares them.`,
		Example: `  # Rename using one mapping and the jars in ./libs
  class-remapper remap app.jar app-mapped.jar -m names.map --libs libs

  # Layer a patch over a base mapping and go back the other way
  class-remapper remap app-mapped.jar app.jar -m base.map -m patch.yaml --reverse`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemap(cmd, root, args)
		},
	}

	flags := cmd.Flags()
	flags.StringP("input", "i", "", "input container")
	flags.StringP("output", "o", "", "output container")
	flags.StringArrayP("mapping", "m", nil, "mapping document (repeatable; later documents override earlier ones)")
	flags.StringP("libs", "l", "", "directory of library containers")
	flags.BoolP("reverse", "r", false, "apply every rule from new name to old name")
	flags.Bool("keep-source", false, "keep SourceFile and SourceDebugExtension attributes")
	flags.IntP("jobs", "j", 0, "concurrent class rewrites (default: number of CPUs)")
	flags.String("on-collision", "", "what two rules targeting one class name do: reject or overwrite")
	flags.String("cache-dir", "", "library metadata cache directory")
	flags.Bool("no-cache", false, "do not read or write the library metadata cache")

	return cmd
}

func runRemap(cmd *cobra.Command, root *rootOptions, args []string) error {
	cfg, err := root.loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Input = args[0]
	}

	if len(args) > 1 {
		cfg.Output = args[1]
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := cfg.CollisionPolicy()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	var libs []string

	if cfg.Libs != "" {
		if libs, err = metadata.FindLibraries(cfg.Libs); err != nil {
			return err
		}
	}

	report, err := remap.Run(cmd.Context(), remap.Options{
		Input:       cfg.Input,
		Output:      cfg.Output,
		Mappings:    cfg.Mappings,
		Libraries:   libs,
		Reverse:     cfg.Reverse,
		KeepSource:  cfg.KeepSource,
		Jobs:        cfg.Jobs,
		OnCollision: policy,
		Cache:       openCache(cfg, logger),
		Logger:      logger,
	})
	if report != nil {
		printDiagnostics(cmd.ErrOrStderr(), report.Diagnostics)
	}

	if err != nil {
		return err
	}

	printRemapSummary(cmd.OutOrStdout(), cfg, report)

	return nil
}

// openCache returns nil when caching is disabled or the directory is
// unusable.
func openCache(cfg *config.Config, logger *zap.Logger) *metadata.Cache {
	if cfg.NoCache {
		return nil
	}

	cache, err := metadata.OpenCache(cfg.CacheDir)
	if err != nil {
		logger.Warn("metadata cache disabled", zap.Error(err))
		return nil
	}

	logger.Debug("metadata cache", zap.String("dir", cache.Dir()))

	return cache
}
