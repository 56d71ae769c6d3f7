package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// The package-level logger is usable from the moment the package loads, so
// library code and tests can log without any setup call.
var log = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init reconfigures the package-level logger writing JSON to stdout.
func Init() {
	log = slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

// New wraps a handler in a slog.Logger. Used by tests to capture output.
func New(h slog.Handler) *slog.Logger {
	return slog.New(h)
}

func NewJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return slog.NewJSONHandler(w, opts)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Infof(format string, v ...any) {
	log.Info(fmt.Sprintf(format, v...))
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

func Errorf(format string, v ...any) {
	log.Error(fmt.Sprintf(format, v...))
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Debugf(format string, v ...any) {
	log.Debug(fmt.Sprintf(format, v...))
}

func Fatal(msg string) {
	log.Error(msg)
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	log.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
