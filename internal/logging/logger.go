// Package logging provides the structured logger used across the audit
// pipeline: leveled output, field chaining, colored text for terminals,
// JSON for production, and size/age based file rotation.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var (
	levelNames = map[Level]string{
		DebugLevel: "DEBUG",
		InfoLevel:  "INFO",
		WarnLevel:  "WARN",
		ErrorLevel: "ERROR",
		FatalLevel: "FATAL",
	}

	levelColors = map[Level]string{
		DebugLevel: "\033[36m",
		InfoLevel:  "\033[32m",
		WarnLevel:  "\033[33m",
		ErrorLevel: "\033[31m",
		FatalLevel: "\033[35m",
	}

	resetColor = "\033[0m"
)

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]any

// Logger is the interface every pipeline component depends on, never the
// concrete StandardLogger, so components stay testable behind a fake.
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(msg string, fields ...Fields)
	Fatal(msg string, fields ...Fields)

	WithField(key string, value any) Logger
	WithFields(fields Fields) Logger
	WithContext(ctx context.Context) Logger
	WithError(err error) Logger

	SetLevel(level Level)
	SetOutput(w io.Writer)
}

type StandardLogger struct {
	mu         sync.RWMutex
	level      Level
	output     io.Writer
	fields     Fields
	colored    bool
	jsonFormat bool
	showCaller bool
	timeFormat string
}

var (
	global     *StandardLogger
	globalOnce sync.Once
)

// Init initializes the process-wide logger from ADAUDIT_LOG_* environment
// variables. Safe to call more than once; only the first call takes effect.
func Init() {
	globalOnce.Do(func() {
		global = &StandardLogger{
			level:      InfoLevel,
			output:     os.Stdout,
			fields:     make(Fields),
			colored:    true,
			jsonFormat: false,
			showCaller: true,
			timeFormat: "2006-01-02 15:04:05.000",
		}
		configureFromEnv()
	})
}

func configureFromEnv() {
	if level := os.Getenv("ADAUDIT_LOG_LEVEL"); level != "" {
		switch strings.ToUpper(level) {
		case "DEBUG":
			global.SetLevel(DebugLevel)
		case "INFO":
			global.SetLevel(InfoLevel)
		case "WARN":
			global.SetLevel(WarnLevel)
		case "ERROR":
			global.SetLevel(ErrorLevel)
		case "FATAL":
			global.SetLevel(FatalLevel)
		}
	}

	if format := os.Getenv("ADAUDIT_LOG_FORMAT"); format == "json" {
		global.jsonFormat = true
		global.colored = false
	}

	if colored := os.Getenv("ADAUDIT_LOG_COLORED"); colored == "false" {
		global.colored = false
	}

	if caller := os.Getenv("ADAUDIT_LOG_CALLER"); caller == "false" {
		global.showCaller = false
	}

	if logFile := os.Getenv("ADAUDIT_LOG_FILE"); logFile != "" {
		global.SetOutput(NewRotatingFileWriter(logFile, 64<<20, 10, 14))
		global.colored = false
	}
}

// Get returns the global logger, initializing it with defaults if Init was
// never called.
func Get() Logger {
	if global == nil {
		Init()
	}
	return global
}

func New() Logger {
	return &StandardLogger{
		level:      InfoLevel,
		output:     os.Stdout,
		fields:     make(Fields),
		colored:    true,
		jsonFormat: false,
		showCaller: true,
		timeFormat: "2006-01-02 15:04:05.000",
	}
}

func (l *StandardLogger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *StandardLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

func (l *StandardLogger) WithField(key string, value any) Logger {
	return l.WithFields(Fields{key: value})
}

func (l *StandardLogger) WithFields(fields Fields) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	merged := make(Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &StandardLogger{
		level:      l.level,
		output:     l.output,
		fields:     merged,
		colored:    l.colored,
		jsonFormat: l.jsonFormat,
		showCaller: l.showCaller,
		timeFormat: l.timeFormat,
	}
}

func (l *StandardLogger) WithContext(ctx context.Context) Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()

	next := &StandardLogger{
		level:      l.level,
		output:     l.output,
		fields:     make(Fields, len(l.fields)),
		colored:    l.colored,
		jsonFormat: l.jsonFormat,
		showCaller: l.showCaller,
		timeFormat: l.timeFormat,
	}
	for k, v := range l.fields {
		next.fields[k] = v
	}
	if ctx != nil {
		if requestID := ctx.Value(requestIDKey{}); requestID != nil {
			next.fields["request_id"] = requestID
		}
	}
	return next
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the given request id, picked up
// by Logger.WithContext.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func (l *StandardLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *StandardLogger) Debug(msg string, fields ...Fields) { l.log(DebugLevel, msg, fields...) }
func (l *StandardLogger) Info(msg string, fields ...Fields)  { l.log(InfoLevel, msg, fields...) }
func (l *StandardLogger) Warn(msg string, fields ...Fields)  { l.log(WarnLevel, msg, fields...) }
func (l *StandardLogger) Error(msg string, fields ...Fields) { l.log(ErrorLevel, msg, fields...) }

func (l *StandardLogger) Fatal(msg string, fields ...Fields) {
	l.log(FatalLevel, msg, fields...)
	os.Exit(1)
}

func (l *StandardLogger) log(level Level, msg string, extra ...Fields) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if level < l.level {
		return
	}

	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			fields[k] = v
		}
	}

	fields["time"] = time.Now().Format(l.timeFormat)
	fields["level"] = levelNames[level]
	fields["msg"] = msg

	if l.showCaller {
		if pc, file, line, ok := runtime.Caller(2); ok {
			funcName := runtime.FuncForPC(pc).Name()
			fields["caller"] = fmt.Sprintf("%s:%d", filepath.Base(file), line)
			fields["func"] = filepath.Base(funcName)
		}
	}

	var out string
	if l.jsonFormat {
		out = l.formatJSON(fields)
	} else {
		out = l.formatText(level, msg, fields)
	}
	fmt.Fprint(l.output, out)
}

func (l *StandardLogger) formatJSON(fields Fields) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal log: %v"}`+"\n", err)
	}
	return string(data) + "\n"
}

func (l *StandardLogger) formatText(level Level, msg string, fields Fields) string {
	var b strings.Builder

	if t, ok := fields["time"].(string); ok {
		b.WriteString(t)
		b.WriteString(" ")
	}

	levelStr := levelNames[level]
	if l.colored {
		b.WriteString(levelColors[level])
		b.WriteString(fmt.Sprintf("[%-5s]", levelStr))
		b.WriteString(resetColor)
	} else {
		b.WriteString(fmt.Sprintf("[%-5s]", levelStr))
	}
	b.WriteString(" ")

	if caller, ok := fields["caller"].(string); ok {
		b.WriteString("[")
		b.WriteString(caller)
		b.WriteString("] ")
		delete(fields, "caller")
	}

	b.WriteString(msg)

	delete(fields, "time")
	delete(fields, "level")
	delete(fields, "msg")
	delete(fields, "func")

	if len(fields) > 0 {
		b.WriteString(" | ")
		first := true
		for k, v := range fields {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s=%v", k, v))
			first = false
		}
	}

	b.WriteString("\n")
	return b.String()
}
