package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"class-remapper/internal/remap"
)

// errCheckFailed is returned by check --strict when warnings were found.
var errCheckFailed = errors.New("check reported warnings")

func newCheckCommand(root *rootOptions) *cobra.Command {
	var (
		against string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "check [mapping...]",
		Short: "Validate mapping documents without rewriting anything",
		Long: `Parse and validate mapping documents and build their rule tables. With
--against, every rule is also checked against the classes of a container:
rules naming classes or members the container does not have are reported,
with close matches suggested.`,
		Example: `  class-remapper check names.map
  class-remapper check base.map patch.yaml --against app.jar --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				cfg.Mappings = args
			}

			if len(cfg.Mappings) == 0 {
				return errors.New("no mapping documents given")
			}

			policy, err := cfg.CollisionPolicy()
			if err != nil {
				return err
			}

			report, err := remap.Check(remap.CheckOptions{
				Mappings:    cfg.Mappings,
				Against:     against,
				Reverse:     cfg.Reverse,
				OnCollision: policy,
			})
			if report != nil {
				printDiagnostics(cmd.ErrOrStderr(), report.Diagnostics)
			}

			if err != nil {
				return err
			}

			printCheckSummary(cmd.OutOrStdout(), cfg.Mappings, against, report)

			if strict && len(report.Diagnostics.Warnings) > 0 {
				return fmt.Errorf("%w: %d", errCheckFailed, len(report.Diagnostics.Warnings))
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&against, "against", "", "container whose classes the rules must match")
	flags.BoolVar(&strict, "strict", false, "fail when any warning is reported")
	flags.BoolP("reverse", "r", false, "check the rules from new name to old name")
	flags.String("on-collision", "", "what two rules targeting one class name do: reject or overwrite")

	return cmd
}
