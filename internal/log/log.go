package log

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level   = zap.NewAtomicLevelAt(LevelFor(1))
	current atomic.Pointer[zap.Logger]
)

func init() {
	current.Store(newLogger(os.Stderr, "text"))
}

// Init installs the process-wide logger. It is called once the root
// command's flags are parsed; before that only warnings reach stderr.
func Init(verbosity int, format string) {
	level.SetLevel(LevelFor(verbosity))
	l := newLogger(os.Stderr, format)
	current.Store(l)
	zap.ReplaceGlobals(l)
}

// newLogger writes to w. Text output drops the timestamp since it is read
// interleaved with compiler output; json keeps it for tooling.
func newLogger(w io.Writer, format string) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}

	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.TimeKey = zapcore.OmitKey
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level))
}

// Logger returns the process-wide logger.
func Logger() *zap.Logger {
	return current.Load()
}

// Component returns a logger named after a cfb subsystem (config, shell,
// lang, watch). Packages under pkg/ take it through their WithLogger option.
func Component(name string) *zap.Logger {
	return current.Load().Named(name)
}

func Error(msg string, keysAndValues ...any) {
	current.Load().Sugar().Errorw(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...any) {
	current.Load().Sugar().Warnw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...any) {
	current.Load().Sugar().Infow(msg, keysAndValues...)
}

// Trace logs only at -v=4.
func Trace(msg string, keysAndValues ...any) {
	l := current.Load()
	if !l.Core().Enabled(LevelTrace) {
		return
	}
	if ce := l.Sugar().With(keysAndValues...).Desugar().Check(LevelTrace, msg); ce != nil {
		ce.Write()
	}
}
