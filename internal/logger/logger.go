// Package logger provides the leveled diagnostic logger injected into the
// ingestion driver, the line sources and the consumers.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

const timeFormat = "2006-01-02T15:04:05.000000Z07:00"

// Level is a log severity. Lower values are more severe.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger is the diagnostic sink. Calls never fail and never affect control flow.
type Logger interface {
	Printf(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	// WithPrefix returns a Logger writing to the same destination with the
	// given prefix before every message.
	WithPrefix(prefix string) Logger
}

var (
	_ Logger = (*nopLogger)(nil)
	_ Logger = (*standardLogger)(nil)
	_ Logger = (*LogfLogger)(nil)
	_ Logger = (*BufferLogger)(nil)
)

// NopLogger discards everything.
var NopLogger Logger = &nopLogger{}

type nopLogger struct{}

func (*nopLogger) Printf(string, ...any) {}
func (*nopLogger) Debugf(string, ...any) {}
func (*nopLogger) Infof(string, ...any) {}
func (*nopLogger) Warnf(string, ...any) {}
func (*nopLogger) Errorf(string, ...any) {}
func (n *nopLogger) WithPrefix(string) Logger { return n }

// utcWriter stamps each log line with a fixed-width UTC timestamp.
type utcWriter struct {
	w io.Writer
}

func (u utcWriter) Write(p []byte) (int, error) {
	return fmt.Fprintf(u.w, "%s %s", time.Now().UTC().Format(timeFormat), p)
}

type standardLogger struct {
	logger *log.Logger
	level  Level
	prefix string
	w      io.Writer
}

func newStandardLogger(w io.Writer, level Level, prefix string) *standardLogger {
	return &standardLogger{
		logger: log.New(utcWriter{w: w}, "", 0),
		level:  level,
		prefix: prefix,
		w:      w,
	}
}

// NewStandardLogger logs Info and above to w.
func NewStandardLogger(w io.Writer) Logger {
	return newStandardLogger(w, LevelInfo, "")
}

// NewVerboseLogger logs everything, including Debug, to w.
func NewVerboseLogger(w io.Writer) Logger {
	return newStandardLogger(w, LevelDebug, "")
}

// NewLevelLogger logs messages at level or more severe to w.
func NewLevelLogger(w io.Writer, level Level) Logger {
	return newStandardLogger(w, level, "")
}

func (s *standardLogger) logf(level Level, format string, v ...any) {
	if level > s.level {
		return
	}
	s.logger.Printf("%-5s %s%s", level, s.prefix, fmt.Sprintf(format, v...))
}

func (s *standardLogger) Printf(format string, v ...any) { s.logf(LevelInfo, format, v...) }
func (s *standardLogger) Debugf(format string, v ...any) { s.logf(LevelDebug, format, v...) }
func (s *standardLogger) Infof(format string, v ...any) { s.logf(LevelInfo, format, v...) }
func (s *standardLogger) Warnf(format string, v ...any) { s.logf(LevelWarn, format, v...) }
func (s *standardLogger) Errorf(format string, v ...any) { s.logf(LevelError, format, v...) }

func (s *standardLogger) WithPrefix(prefix string) Logger {
	return newStandardLogger(s.w, s.level, s.prefix+prefix)
}

// Logfer is anything with a Logf method, such as *testing.T.
type Logfer interface {
	Logf(format string, v ...any)
}

// LogfLogger routes every level to a Logfer.
type LogfLogger struct {
	wrapped Logfer
	prefix  string
}

func NewLogfLogger(l Logfer) *LogfLogger {
	return &LogfLogger{wrapped: l}
}

func (l *LogfLogger) logf(level Level, format string, v ...any) {
	l.wrapped.Logf("%s %s%s", level, l.prefix, fmt.Sprintf(format, v...))
}

func (l *LogfLogger) Printf(format string, v ...any) { l.logf(LevelInfo, format, v...) }
func (l *LogfLogger) Debugf(format string, v ...any) { l.logf(LevelDebug, format, v...) }
func (l *LogfLogger) Infof(format string, v ...any) { l.logf(LevelInfo, format, v...) }
func (l *LogfLogger) Warnf(format string, v ...any) { l.logf(LevelWarn, format, v...) }
func (l *LogfLogger) Errorf(format string, v ...any) { l.logf(LevelError, format, v...) }

func (l *LogfLogger) WithPrefix(prefix string) Logger {
	return &LogfLogger{wrapped: l.wrapped, prefix: l.prefix + prefix}
}

// BufferLogger keeps every message in memory, one per line, formatted as
// "LEVEL message". Intended for tests asserting on diagnostics.
type BufferLogger struct {
	mu     *sync.Mutex
	buf    *bytes.Buffer
	prefix string
}

func NewBufferLogger() *BufferLogger {
	return &BufferLogger{mu: &sync.Mutex{}, buf: &bytes.Buffer{}}
}

func (b *BufferLogger) logf(level Level, format string, v ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintf(b.buf, "%s %s%s\n", level, b.prefix, fmt.Sprintf(format, v...))
}

func (b *BufferLogger) Printf(format string, v ...any) { b.logf(LevelInfo, format, v...) }
func (b *BufferLogger) Debugf(format string, v ...any) { b.logf(LevelDebug, format, v...) }
func (b *BufferLogger) Infof(format string, v ...any) { b.logf(LevelInfo, format, v...) }
func (b *BufferLogger) Warnf(format string, v ...any) { b.logf(LevelWarn, format, v...) }
func (b *BufferLogger) Errorf(format string, v ...any) { b.logf(LevelError, format, v...) }

func (b *BufferLogger) WithPrefix(prefix string) Logger {
	return &BufferLogger{mu: b.mu, buf: b.buf, prefix: b.prefix + prefix}
}

// Lines returns the captured messages in order.
func (b *BufferLogger) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimSuffix(b.buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// String returns everything captured so far.
func (b *BufferLogger) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
