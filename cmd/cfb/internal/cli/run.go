package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/pkg/lang"
)

var runFlags struct {
	stdin string
}

var runCmd = &cobra.Command{
	Use:   "run <source>",
	Short: "Build a source file if needed, then run it",
	Long: `Builds the source file (skipping compilation when the cached artifact
is up to date) and runs it, printing the program's output.

Input comes from --stdin when given, otherwise from the file named by the
default_stdin template when that file exists, otherwise the program reads
from the null device.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlags.stdin, "stdin", "",
		"File fed to the program's standard input")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	source, err := lang.Canonicalize(args[0])
	if err != nil {
		return err
	}

	inputPath, err := s.inputPath(source, runFlags.stdin)
	if err != nil {
		return err
	}
	input, closeInput, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer closeInput()

	output, err := s.runner.Run(cmd.Context(), source, input)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
