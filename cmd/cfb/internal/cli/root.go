// Package cli implements the cfb command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/internal/log"
	"github.com/albertocavalcante/cfb/pkg/config"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitConfig  = 2
)

// globalFlags holds persistent flags that apply to all commands
var globalFlags struct {
	verbosity int
	logFormat string
	noColor   bool
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cfb",
	Short: "Compile, cache and run single-file programs",
	Long: `cfb compiles and runs single source files using per-extension
command templates from cfb.toml files found in the working directory and
its ancestors. Artifacts are cached in ./cfb-out and rebuilt only when the
source is newer.

Running cfb without a subcommand builds every configured source under the
working directory (same as 'cfb build-all').`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cfb %s (%s)\n", Version, GitCommit)
	},
}

func init() {
	rootCmd.RunE = runBuildAll
	rootCmd.AddCommand(versionCmd)

	// Global flags (persistent across all commands)
	rootCmd.PersistentFlags().IntVarP(&globalFlags.verbosity, "verbosity", "v", 1,
		"Verbosity level (0=error, 1=warn, 2=info, 3=debug, 4=trace)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.logFormat, "log-format", "text",
		"Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.noColor, "no-color", false,
		"Disable colored status output")

	// Hook to apply flags before command runs
	cobra.OnInitialize(initLogging)
}

// initLogging applies CLI flags to the logger.
func initLogging() {
	log.Init(globalFlags.verbosity, globalFlags.logFormat)
}

// forceColor honors the CLICOLOR_FORCE convention for piped output.
func forceColor() bool {
	v := os.Getenv("CLICOLOR_FORCE")
	return v != "" && v != "0"
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, config.ErrParse), errors.Is(err, config.ErrIO):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// Execute runs the root command. Interrupts cancel the running child process.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(ExitCode(err))
	}
}

// RootCmd returns the root command for testing.
func RootCmd() *cobra.Command {
	return rootCmd
}
