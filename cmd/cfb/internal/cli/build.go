package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/pkg/lang"
)

var buildFlags struct {
	dryRun bool
	json   bool
}

var buildCmd = &cobra.Command{
	Use:   "build <source>...",
	Short: "Build source files without running them",
	Long: `Builds each named source file in order, stopping at the first failure.
Sources whose cached artifact is up to date are skipped.

With --dry-run nothing is executed; the formatted compile and run commands
are printed instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&buildFlags.dryRun, "dry-run", "n", false,
		"Print the commands that would run")
	buildCmd.Flags().BoolVar(&buildFlags.json, "json", false,
		"With --dry-run, output the plan as JSON")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var plans []lang.Plan
	for _, arg := range args {
		source, err := lang.Canonicalize(arg)
		if err != nil {
			return err
		}

		if buildFlags.dryRun {
			plan, err := s.runner.Plan(source)
			if err != nil {
				return err
			}
			plans = append(plans, plan)
			continue
		}

		if err := s.runner.Build(cmd.Context(), source); err != nil {
			return err
		}
	}

	if !buildFlags.dryRun {
		return nil
	}
	if buildFlags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	}

	out := cmd.OutOrStdout()
	for _, p := range plans {
		state := "stale"
		if p.Fresh {
			state = "fresh"
		}
		_, _ = fmt.Fprintf(out, "# %s (%s)\n", p.Source, state)
		for _, c := range p.Compile {
			_, _ = fmt.Fprintf(out, "%s\n", c)
		}
		_, _ = fmt.Fprintf(out, "%s\n", p.Run)
	}
	return nil
}
