package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/cmd/cfb/internal/discover"
	"github.com/albertocavalcante/cfb/pkg/cache"
)

var statusFlags struct {
	json    bool
	exclude []string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which sources need rebuilding",
	Long: `Lists every configured source under the working directory with the state
of its cached artifact:

  fresh    artifact is at least as new as the source
  stale    source changed since the last build
  missing  no artifact yet

The --json flag outputs the result as JSON for scripting.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusFlags.json, "json", false,
		"Output as JSON")
	statusCmd.Flags().StringArrayVar(&statusFlags.exclude, "exclude", nil,
		"Glob pattern of paths to skip (repeatable)")

	rootCmd.AddCommand(statusCmd)
}

// StatusEntry is one source in the status report.
type StatusEntry struct {
	Path  string `json:"path"`
	State string `json:"state"`
	cache.Entry
}

// StatusOutput is the JSON output format for cfb status.
type StatusOutput struct {
	Root        string        `json:"root"`
	OutputDir   string        `json:"output_dir"`
	ConfigFiles []string      `json:"config_files"`
	Sources     []StatusEntry `json:"sources"`
	Fresh       int           `json:"fresh"`
	Pending     int           `json:"pending"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	sources, err := discover.Sources(cmd.Context(), discover.Options{
		Root:      s.ws.Root,
		Match:     s.runner.Matches,
		Exclude:   statusFlags.exclude,
		SkipPaths: []string{s.ws.OutputDir},
	})
	if err != nil {
		return fmt.Errorf("failed to discover sources: %w", err)
	}

	report := StatusOutput{
		Root:        s.ws.Root,
		OutputDir:   s.ws.OutputDir,
		ConfigFiles: s.cfg.Files,
		Sources:     make([]StatusEntry, 0, len(sources)),
	}
	for _, src := range sources {
		entry := cache.Inspect(src.Path, s.ws.ArtifactPath(src.Path))
		report.Sources = append(report.Sources, StatusEntry{
			Path:  src.Rel,
			State: entry.State(),
			Entry: entry,
		})
		if entry.Fresh {
			report.Fresh++
		} else {
			report.Pending++
		}
	}
	if report.ConfigFiles == nil {
		report.ConfigFiles = []string{}
	}

	if statusFlags.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	out := cmd.OutOrStdout()
	if len(report.ConfigFiles) == 0 {
		_, _ = fmt.Fprintln(out, "No cfb.toml found in this directory or its ancestors.")
		return nil
	}
	if len(report.Sources) == 0 {
		_, _ = fmt.Fprintln(out, "No configured sources found.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range report.Sources {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.State, e.Path)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(out, "\n%d sources: %d fresh, %d need building\n",
		len(report.Sources), report.Fresh, report.Pending)
	return nil
}
