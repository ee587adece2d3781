package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/albertocavalcante/cfb/internal/log"
	"github.com/albertocavalcante/cfb/pkg/config"
)

var configFlags struct {
	format string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Resolves cfb.toml files from the working directory up to the filesystem
root and prints the merged language table, along with the files it came
from (nearest first).

Formats: toml (default), yaml, json.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVarP(&configFlags.format, "format", "f", "toml",
		"Output format (toml, yaml, json)")

	rootCmd.AddCommand(configCmd)
}

// ConfigOutput is the JSON output format for cfb config.
type ConfigOutput struct {
	Files  []string       `json:"files"`
	Config *config.Config `json:"config"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg, err := config.NewLoader(config.WithLogger(log.Component("config"))).LoadFrom(wd)
	if err != nil {
		return err
	}

	return writeConfig(cmd.OutOrStdout(), cfg, configFlags.format)
}

func writeConfig(w io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "json":
		files := cfg.Files
		if files == nil {
			files = []string{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ConfigOutput{Files: files, Config: cfg})

	case "yaml", "yml":
		writeSources(w, cfg.Files)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return enc.Close()

	case "toml":
		writeSources(w, cfg.Files)
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want toml, yaml or json)", format)
	}
}

// writeSources writes the contributing files as comments, which both TOML
// and YAML accept.
func writeSources(w io.Writer, files []string) {
	if len(files) == 0 {
		_, _ = fmt.Fprintln(w, "# no cfb.toml found")
		return
	}
	_, _ = fmt.Fprintln(w, "# resolved from (nearest first):")
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "#   %s\n", f)
	}
}
