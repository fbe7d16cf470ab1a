// Package logging provides per-module loggers on top of zap. Diagnostic
// output always goes to stderr so that stdout stays reserved for the
// migration report.
package logging

import (
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/enabletech/adaptermigrate/pkg/env"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const modulePrefix = "github.com/enabletech/adaptermigrate/"

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	rootOnce sync.Once
	root     *zap.Logger
)

// Logger is a leveled, printf-style logger tagged with the module it belongs to.
type Logger struct {
	*zap.SugaredLogger
	module string
}

// Module returns the module name this logger was created for.
func (l *Logger) Module() string {
	return l.module
}

// LoggerForModule returns a logger named after the calling package.
func LoggerForModule() *Logger {
	return CreateLogger(callerModule(2))
}

// CreateLogger returns a logger for an explicitly named module.
func CreateLogger(module string) *Logger {
	return &Logger{
		SugaredLogger: rootLogger().Named(module).Sugar(),
		module:        module,
	}
}

// SetLevel changes the level of all loggers at once.
func SetLevel(name string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return errors.Wrapf(err, "invalid log level %q", name)
	}
	level.SetLevel(l)
	return nil
}

func rootLogger() *zap.Logger {
	rootOnce.Do(func() {
		if err := SetLevel(env.LogLevel.Setting()); err != nil {
			level.SetLevel(zapcore.InfoLevel)
		}
		root = zap.New(newCore(os.Stderr, env.LogEncoding.Setting()))
	})
	return root
}

func newCore(out zapcore.WriteSyncer, encoding string) zapcore.Core {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(enc, zapcore.Lock(out), level)
}

func callerModule(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := strings.TrimPrefix(fn.Name(), modulePrefix)
	// Function names look like "pkg/migration.init" or "pkg/migration.(*Runner).Run".
	dir, file := path.Split(name)
	if idx := strings.Index(file, "."); idx >= 0 {
		file = file[:idx]
	}
	return dir + file
}
