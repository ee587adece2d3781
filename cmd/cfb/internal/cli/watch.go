package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/cmd/cfb/internal/watch"
	"github.com/albertocavalcante/cfb/internal/log"
	"github.com/albertocavalcante/cfb/pkg/lang"
)

var watchFlags struct {
	stdin    string
	debounce int
	verbose  bool
}

var watchCmd = &cobra.Command{
	Use:   "watch <source>",
	Short: "Rebuild and rerun a source file whenever it changes",
	Long: `Runs the source once, then watches it (and its input file) and reruns
after every change. Saves that leave the file contents unchanged are
ignored, and runs never overlap.

Example output:

  $ cfb watch a.cpp

  cfb: watching /home/me/contest/a.cpp
  cfb: ready
   % build /home/me/contest/a.cpp
   $ g++ -O2 -o /home/me/contest/cfb-out/a /home/me/contest/a.cpp
   % run /home/me/contest/a.cpp
   $ /home/me/contest/cfb-out/a
  42
  [14:32:16] ✓ /home/me/contest/a.cpp (812ms)

Press Ctrl+C to stop watching.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.stdin, "stdin", "",
		"File fed to the program's standard input")
	watchCmd.Flags().IntVar(&watchFlags.debounce, "debounce", 200,
		"Debounce window in milliseconds")
	watchCmd.Flags().BoolVar(&watchFlags.verbose, "verbose", false,
		"Show watched directories and skipped saves")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	source, err := lang.Canonicalize(args[0])
	if err != nil {
		return err
	}
	// Fail fast on unknown languages rather than on the first change.
	if _, err := s.ws.Resolve(source); err != nil {
		return err
	}

	extra, err := s.watchedInputs(source, watchFlags.stdin)
	if err != nil {
		return err
	}

	// Include SIGHUP to handle terminal hangup
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	out := cmd.OutOrStdout()
	run := func(ctx context.Context) error {
		// Resolved per cycle: the default input may appear after startup.
		inputPath, err := s.inputPath(source, watchFlags.stdin)
		if err != nil {
			return err
		}
		input, closeInput, err := openInput(inputPath)
		if err != nil {
			return err
		}
		defer closeInput()

		output, err := s.runner.Run(ctx, source, input)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(out, output)
		return nil
	}

	w, err := watch.New(watch.Config{
		Source:   source,
		Extra:    extra,
		Debounce: watchFlags.debounce,
		Verbose:  watchFlags.verbose,
		NoColor:  globalFlags.noColor,
		JSON:     globalFlags.logFormat == "json",
		Logger: watch.NewLogger(watch.LoggerConfig{
			Writer:     cmd.ErrOrStderr(),
			Verbose:    watchFlags.verbose,
			NoColor:    globalFlags.noColor,
			ForceColor: forceColor(),
			JSON:       globalFlags.logFormat == "json",
		}),
		Log: log.Component("watch"),
	}, run)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	return w.Run(ctx)
}

// watchedInputs returns the absolute input path whose changes trigger a
// rerun. The default input is watched even before it exists, as long as its
// directory does.
func (s *session) watchedInputs(source, explicit string) ([]string, error) {
	path := explicit
	if path == "" {
		var err error
		if path, err = s.ws.DefaultInputPath(source); err != nil {
			return nil, err
		}
		if path == "" {
			return nil, nil
		}
		if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
			log.Warn("default input directory does not exist; not watching it", "input", path)
			return nil, nil
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %s: %w", path, err)
	}
	return []string{abs}, nil
}
