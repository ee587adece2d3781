package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/cfb/internal/log"
	"github.com/albertocavalcante/cfb/internal/status"
	"github.com/albertocavalcante/cfb/pkg/config"
	"github.com/albertocavalcante/cfb/pkg/lang"
	"github.com/albertocavalcante/cfb/pkg/shell"
)

// session is the per-invocation state shared by the build and run commands.
type session struct {
	cfg     *config.Config
	ws      *lang.Workspace
	runner  *lang.Runner
	printer *status.Printer
}

// newSession resolves configuration from the working directory, prepares
// the output directory and wires the runner to cmd's output streams.
func newSession(cmd *cobra.Command) (*session, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	cfg, err := config.NewLoader(config.WithLogger(log.Component("config"))).LoadFrom(wd)
	if err != nil {
		return nil, err
	}

	ws, err := lang.Open(cfg, wd)
	if err != nil {
		return nil, err
	}
	log.Trace("workspace opened", "root", ws.Root, "output_dir", ws.OutputDir, "config_files", cfg.Files)

	printer := status.New(status.Config{
		Writer:     cmd.ErrOrStderr(),
		NoColor:    globalFlags.noColor,
		ForceColor: forceColor(),
		JSON:       globalFlags.logFormat == "json",
	})
	exec := shell.New(
		shell.WithObserver(printer),
		shell.WithStdout(cmd.OutOrStdout()),
		shell.WithStderr(cmd.ErrOrStderr()),
		shell.WithLogger(log.Component("shell")),
	)
	runner := lang.New(ws,
		lang.WithExecutor(exec),
		lang.WithReporter(printer),
		lang.WithLogger(log.Component("lang")),
	)

	return &session{
		cfg:     cfg,
		ws:      ws,
		runner:  runner,
		printer: printer,
	}, nil
}

// inputPath picks the file fed to the program: an explicit path wins over
// the configured default. An empty result means no input.
func (s *session) inputPath(source, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, ok, err := s.ws.DefaultInput(source)
	if err != nil || !ok {
		return "", err
	}
	log.Info("using default input", "source", source, "input", path)
	return path, nil
}

// openInput opens path for reading. An empty path yields a nil reader.
func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
