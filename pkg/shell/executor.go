// Package shell runs command lines through the system shell and captures
// their output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultShell is the interpreter used for `-c <command>`.
const DefaultShell = "/bin/sh"

// Observer receives each literal command line just before it is executed.
type Observer interface {
	Command(command string)
}

type nopObserver struct{}

func (nopObserver) Command(string) {}

// Executor runs shell commands.
type Executor struct {
	shell    string
	stdout   io.Writer // failing commands replay their stdout here
	stderr   io.Writer // failing commands replay their stderr here
	observer Observer
	logger   *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithShell sets the shell binary. Used primarily for testing.
func WithShell(path string) Option {
	return func(e *Executor) {
		e.shell = path
	}
}

// WithStdout sets where the stdout of a failed command is replayed.
func WithStdout(w io.Writer) Option {
	return func(e *Executor) {
		e.stdout = w
	}
}

// WithStderr sets where the stderr of a failed command is replayed.
func WithStderr(w io.Writer) Option {
	return func(e *Executor) {
		e.stderr = w
	}
}

// WithObserver sets the sink for command status lines.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New creates a new Executor with the given options.
func New(opts ...Option) *Executor {
	e := &Executor{
		shell:    DefaultShell,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.observer == nil {
		e.observer = nopObserver{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Run executes command with `<shell> -c` and returns its stdout followed by
// its stderr. When input is nil the child reads from the null device.
//
// On a nonzero exit the captured output is written to the configured
// stdout/stderr and an ErrCommandFailed error is returned.
func (e *Executor) Run(ctx context.Context, command string, input io.Reader) (string, error) {
	e.observer.Command(command)
	e.logger.Debug("running command",
		zap.String("shell", e.shell),
		zap.String("command", command),
		zap.Bool("stdin", input != nil))

	cmd := exec.CommandContext(ctx, e.shell, "-c", command)

	var stdin io.WriteCloser
	if input != nil {
		var err error
		stdin, err = cmd.StdinPipe()
		if err != nil {
			return "", newIOError(command, err)
		}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", newIOError(command, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", newIOError(command, err)
	}

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newSpawnError(command, err)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	if stdin != nil {
		g.Go(func() error {
			return feed(stdin, input)
		})
	}
	g.Go(func() error {
		_, err := io.Copy(&outBuf, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&errBuf, stderr)
		return err
	})

	// Pipes must be drained before Wait closes them.
	copyErr := g.Wait()
	waitErr := cmd.Wait()
	e.logger.Debug("command exited",
		zap.String("command", command),
		zap.Int("exit_code", cmd.ProcessState.ExitCode()))

	if waitErr != nil {
		// A child killed because ctx ended reports the cancellation, not
		// its exit status. A child that finished first keeps its result.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return "", newIOError(command, waitErr)
		}
		e.replay(outBuf.Bytes(), errBuf.Bytes())
		return "", newCommandFailedError(command, exitErr.ExitCode())
	}
	if copyErr != nil {
		return "", newIOError(command, copyErr)
	}

	return decode(outBuf.Bytes()) + decode(errBuf.Bytes()), nil
}

// feed copies input into the child's stdin and closes it. A child that
// exits or closes stdin early is not an error.
func feed(stdin io.WriteCloser, input io.Reader) error {
	_, err := io.Copy(stdin, input)
	closeErr := stdin.Close()
	if err != nil && !isBrokenPipe(err) {
		return err
	}
	if closeErr != nil && !isBrokenPipe(closeErr) && !errors.Is(closeErr, os.ErrClosed) {
		return closeErr
	}
	return nil
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

func (e *Executor) replay(stdout, stderr []byte) {
	if _, err := e.stdout.Write(stdout); err != nil {
		e.logger.Warn("failed to replay stdout", zap.Error(err))
	}
	if _, err := e.stderr.Write(stderr); err != nil {
		e.logger.Warn("failed to replay stderr", zap.Error(err))
	}
}

// decode converts process output to a string, replacing invalid UTF-8.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}
