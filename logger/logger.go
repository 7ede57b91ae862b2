package logger

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	WithField(key string, value interface{}) Logger
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
}

// NewLogger will create a new logger implementation that writes to stderr.
// Output is JSON unless stderr is a terminal, so Lambda logs stay machine readable.
func NewLogger(serviceName string, level string, stackDump bool) *LoggerImpl {
	fd := os.Stderr.Fd()
	useJSON := !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	return newLogger(os.Stderr, serviceName, level, stackDump, useJSON)
}

// NewJSONLogger will create a new logger implementation that always writes JSON entries to w.
func NewJSONLogger(w io.Writer, serviceName string, level string, stackDump bool) *LoggerImpl {
	return newLogger(w, serviceName, level, stackDump, true)
}

// NewNullLogger discards everything. Used by tests that don't inspect log output.
func NewNullLogger() *LoggerImpl {
	return newLogger(io.Discard, "null", "panic", false, false)
}

func newLogger(w io.Writer, serviceName string, level string, stackDump bool, useJSON bool) *LoggerImpl {
	l := log.New()
	l.SetOutput(w)
	if useJSON {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	logLevel, err := log.ParseLevel(level)
	if err == nil {
		l.SetLevel(logLevel)
	} else {
		fmt.Println("Error setting up logging: ", err)
		os.Exit(1)
	}
	logger := l.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: logger, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDump}
}

// WithField returns a Logger that adds key=value to every entry.
func (l *LoggerImpl) WithField(key string, value interface{}) Logger {
	return &LoggerImpl{
		Logger:         l.Logger.WithField(key, value),
		Service:        l.Service,
		LogLevelStr:    l.LogLevelStr,
		PrintStackDump: l.PrintStackDump,
	}
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace when stack dumps are enabled or in trace mode).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.PrintStackDump || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}
