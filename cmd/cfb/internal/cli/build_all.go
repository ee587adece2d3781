package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/cmd/cfb/internal/discover"
	"github.com/albertocavalcante/cfb/internal/log"
)

var buildAllFlags struct {
	exclude   []string
	keepGoing bool
}

var buildAllCmd = &cobra.Command{
	Use:   "build-all",
	Short: "Build every configured source under the working directory",
	Long: `Walks the working directory and builds every file whose extension has a
language entry, in lexical path order.

Hidden directories, node_modules, __pycache__, vendor, target and the
output directory are skipped. --exclude adds glob patterns (doublestar
syntax, matched against slash-separated relative paths).

By default the first failure stops the walk; --keep-going builds
everything and reports how many failed.`,
	Args: cobra.NoArgs,
	RunE: runBuildAll,
}

func init() {
	buildAllCmd.Flags().StringArrayVar(&buildAllFlags.exclude, "exclude", nil,
		"Glob pattern of paths to skip (repeatable)")
	buildAllCmd.Flags().BoolVarP(&buildAllFlags.keepGoing, "keep-going", "k", false,
		"Continue after a failed build")

	rootCmd.AddCommand(buildAllCmd)
}

func runBuildAll(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	sources, err := discover.Sources(cmd.Context(), discover.Options{
		Root:      s.ws.Root,
		Match:     s.runner.Matches,
		Exclude:   buildAllFlags.exclude,
		SkipPaths: []string{s.ws.OutputDir},
	})
	if err != nil {
		return fmt.Errorf("failed to discover sources: %w", err)
	}

	for _, group := range discover.Collisions(sources, s.ws.ArtifactPath) {
		log.Warn("sources share an artifact path",
			"artifact", s.ws.ArtifactPath(group[0].Path),
			"sources", discover.Paths(group))
	}

	if len(sources) == 0 {
		log.Info("no buildable sources found",
			"root", s.ws.Root,
			"extensions", s.cfg.Extensions())
		return nil
	}

	log.Info("sources discovered",
		"count", len(sources),
		"extensions", discover.Extensions(sources))

	var failed []error
	for _, src := range sources {
		if err := s.runner.Build(cmd.Context(), src.Path); err != nil {
			if !buildAllFlags.keepGoing {
				return err
			}
			log.Error("build failed", "source", src.Rel, "error", err)
			failed = append(failed, err)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d sources failed to build; first: %w",
			len(failed), len(sources), failed[0])
	}
	log.Info("build-all finished", "sources", len(sources))
	return nil
}
