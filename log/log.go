// Package log provides a small leveled logger with a fluent event API,
// used by the rawhttp server helper and CLI.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the log level.
type Level int8

const (
	// DebugLevel defines debug log level
	DebugLevel Level = iota
	// InfoLevel defines info log level
	InfoLevel
	// WarnLevel defines warn log level
	WarnLevel
	// ErrorLevel defines error log level
	ErrorLevel
	// FatalLevel defines fatal log level
	FatalLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
	FatalLevel: "FATAL",
}

// String returns the string representation of the log level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", l)
}

// Logger writes leveled, timestamped lines to a single writer. All
// methods are safe for concurrent use.
type Logger struct {
	mu         sync.Mutex
	writer     io.Writer
	level      Level
	timeFormat string
	noColor    bool
	exit       func(int)
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		writer:     w,
		level:      level,
		timeFormat: "2006-01-02 15:04:05",
		exit:       os.Exit,
	}
}

// SetLevel sets the log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetNoColor disables ANSI colors on the level tag.
func (l *Logger) SetNoColor(noColor bool) {
	l.mu.Lock()
	l.noColor = noColor
	l.mu.Unlock()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *Event { return l.event(DebugLevel) }

// Info returns an info level event.
func (l *Logger) Info() *Event { return l.event(InfoLevel) }

// Warn returns a warn level event.
func (l *Logger) Warn() *Event { return l.event(WarnLevel) }

// Error returns an error level event.
func (l *Logger) Error() *Event { return l.event(ErrorLevel) }

// Fatal returns a fatal level event; its Msg/Msgf exit the process.
func (l *Logger) Fatal() *Event { return l.event(FatalLevel) }

func (l *Logger) event(level Level) *Event {
	return &Event{logger: l, level: level}
}

func (l *Logger) write(level Level, msg string, err error) {
	l.mu.Lock()
	if level < l.level {
		l.mu.Unlock()
		return
	}
	line := time.Now().Format(l.timeFormat) + " " + colorize(level, l.noColor) + " " + msg
	if err != nil {
		line += " error=" + err.Error()
	}
	fmt.Fprintln(l.writer, line)
	exit := l.exit
	l.mu.Unlock()
	if level == FatalLevel {
		exit(1)
	}
}

// Event is a single log statement being assembled. Finish it with Msg
// or Msgf; an unfinished event logs nothing.
type Event struct {
	logger *Logger
	level  Level
	err    error
}

// Err attaches an error to the event.
func (e *Event) Err(err error) *Event {
	e.err = err
	return e
}

// Msg logs the event with the given message.
func (e *Event) Msg(msg string) {
	e.logger.write(e.level, msg, e.err)
}

// Msgf logs the event with a formatted message.
func (e *Event) Msgf(format string, v ...interface{}) {
	e.logger.write(e.level, fmt.Sprintf(format, v...), e.err)
}

var (
	defaultLogger     *Logger
	defaultLoggerOnce sync.Once
)

// Default returns the shared logger writing to stderr at info level.
func Default() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = New(os.Stderr, InfoLevel)
	})
	return defaultLogger
}

// Debug returns a debug level event on the default logger.
func Debug() *Event { return Default().Debug() }

// Info returns an info level event on the default logger.
func Info() *Event { return Default().Info() }

// Warn returns a warn level event on the default logger.
func Warn() *Event { return Default().Warn() }

// Error returns an error level event on the default logger.
func Error() *Event { return Default().Error() }

// SetLevel sets the level on the default logger.
func SetLevel(level Level) { Default().SetLevel(level) }
