package lang

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/albertocavalcante/cfb/pkg/cache"
	"github.com/albertocavalcante/cfb/pkg/command"
	"github.com/albertocavalcante/cfb/pkg/shell"
)

// Task names passed to Reporter.Task.
const (
	TaskBuild = "build"
	TaskRun   = "run"
)

// Executor runs a single shell command line.
type Executor interface {
	Run(ctx context.Context, command string, input io.Reader) (string, error)
}

// Reporter receives human-readable progress events.
type Reporter interface {
	Task(name, source string)
	Skip()
	Command(command string)
}

type nopReporter struct{}

func (nopReporter) Task(string, string) {}
func (nopReporter) Skip()               {}
func (nopReporter) Command(string)      {}

// Runner compiles and executes source files within a Workspace.
type Runner struct {
	ws       *Workspace
	exec     Executor
	reporter Reporter
	logger   *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecutor sets the command executor.
func WithExecutor(e Executor) Option {
	return func(r *Runner) {
		r.exec = e
	}
}

// WithReporter sets the progress reporter. When no executor is given the
// default one reports commands to it as well.
func WithReporter(rep Reporter) Option {
	return func(r *Runner) {
		r.reporter = rep
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner for ws.
func New(ws *Workspace, opts ...Option) *Runner {
	r := &Runner{ws: ws}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.exec == nil {
		r.exec = shell.New(shell.WithObserver(r.reporter), shell.WithLogger(r.logger))
	}
	return r
}

// Workspace returns the runner's workspace.
func (r *Runner) Workspace() *Workspace {
	return r.ws
}

// Matches reports whether source has a configured language.
func (r *Runner) Matches(source string) bool {
	return r.ws.Matches(source)
}

// Build compiles source unless its artifact is already up to date.
// Compile commands run in order; the first failure aborts the build.
func (r *Runner) Build(ctx context.Context, source string) error {
	_, err := r.build(ctx, source)
	return err
}

func (r *Runner) build(ctx context.Context, source string) (string, error) {
	entry, err := r.ws.Resolve(source)
	if err != nil {
		return "", err
	}
	output := r.ws.ArtifactPath(source)

	r.reporter.Task(TaskBuild, source)
	if cache.IsUpToDate(source, output) {
		r.logger.Debug("artifact up to date",
			zap.String("source", source),
			zap.String("artifact", output))
		r.reporter.Skip()
		return output, nil
	}

	cmds, err := command.FormatAll(entry.CompileCommands, source, output)
	if err != nil {
		return "", err
	}
	for _, cmd := range cmds {
		if _, err := r.exec.Run(ctx, cmd, nil); err != nil {
			return "", err
		}
	}

	r.logger.Info("built",
		zap.String("source", source),
		zap.String("artifact", output),
		zap.Int("commands", len(entry.CompileCommands)))
	return output, nil
}

// Run builds source, then executes its run command with the optional input
// and returns the command's stdout followed by its stderr.
func (r *Runner) Run(ctx context.Context, source string, input io.Reader) (string, error) {
	output, err := r.build(ctx, source)
	if err != nil {
		return "", err
	}
	entry, err := r.ws.Resolve(source)
	if err != nil {
		return "", err
	}

	r.reporter.Task(TaskRun, source)
	cmd, err := command.Format(entry.RunCommand, source, output)
	if err != nil {
		return "", err
	}
	return r.exec.Run(ctx, cmd, input)
}

// Plan describes the commands a build and run of one source would execute.
type Plan struct {
	Source   string   `json:"source"`
	Artifact string   `json:"artifact"`
	Fresh    bool     `json:"fresh"`
	Compile  []string `json:"compile"`
	Run      string   `json:"run"`
}

// Plan formats every command for source without executing anything.
func (r *Runner) Plan(source string) (Plan, error) {
	entry, err := r.ws.Resolve(source)
	if err != nil {
		return Plan{}, err
	}
	output := r.ws.ArtifactPath(source)

	compile, err := command.FormatAll(entry.CompileCommands, source, output)
	if err != nil {
		return Plan{}, err
	}
	run, err := command.Format(entry.RunCommand, source, output)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Source:   source,
		Artifact: output,
		Fresh:    cache.IsUpToDate(source, output),
		Compile:  compile,
		Run:      run,
	}, nil
}
