package shell

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error codes for process failures.
const (
	ErrCodeSpawn         = "CFB_SPAWN"
	ErrCodeCommandFailed = "CFB_COMMAND_FAILED"
	ErrCodeIO            = "CFB_IO"
)

// Metadata keys attached to process errors.
const (
	MetaKeyCommand  = "command"
	MetaKeyExitCode = "exit_code"
)

// ExitCodeUnknown is recorded when the child was terminated by a signal.
const ExitCodeUnknown = "unknown"

var (
	// ErrSpawn is returned when the shell cannot be started.
	ErrSpawn = errors.New("failed to spawn process")

	// ErrCommandFailed is returned when a command exits with a nonzero status.
	ErrCommandFailed = errors.New("command failed")

	// ErrIO is returned when reading from or writing to a child fails.
	ErrIO = errors.New("process i/o failed")
)

func newSpawnError(command string, cause error) error {
	return cuserr.WrapStdError(errors.Join(ErrSpawn, cause), ErrCodeSpawn,
		"failed to spawn command `"+command+"`: "+cause.Error()).
		WithMetadata(MetaKeyCommand, command)
}

func newCommandFailedError(command string, code int) error {
	exitCode := ExitCodeUnknown
	if code >= 0 {
		exitCode = strconv.Itoa(code)
	}
	return cuserr.WrapStdError(ErrCommandFailed, ErrCodeCommandFailed,
		"command `"+command+"` failed with exit code "+exitCode).
		WithMetadata(MetaKeyCommand, command).
		WithMetadata(MetaKeyExitCode, exitCode)
}

func newIOError(command string, cause error) error {
	return cuserr.WrapStdError(errors.Join(ErrIO, cause), ErrCodeIO,
		"i/o error running `"+command+"`: "+cause.Error()).
		WithMetadata(MetaKeyCommand, command)
}

// ExitCode returns the exit code recorded on a command failure.
// ok is false when err is not a command failure or the child was signaled.
func ExitCode(err error) (code int, ok bool) {
	if !errors.Is(err, ErrCommandFailed) {
		return 0, false
	}
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return 0, false
	}
	raw, found := customErr.GetMetadata(MetaKeyExitCode)
	if !found {
		return 0, false
	}
	code, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return 0, false
	}
	return code, true
}

// Command returns the literal command line recorded on a process error.
func Command(err error) string {
	var customErr *cuserr.CustomError
	if !errors.As(err, &customErr) {
		return ""
	}
	cmd, _ := customErr.GetMetadata(MetaKeyCommand)
	return cmd
}
