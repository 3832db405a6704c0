// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/tls-poke/src/internal/helper/gc"
)

// Level is the severity attached to a leveled log entry.
type Level string

const (
	// LevelInfo is used for diagnostic detail such as drained bytes and status codes.
	LevelInfo Level = "info"
	// LevelWarn is used for policy conditions such as a certificate inside the warning window.
	LevelWarn Level = "warn"
	// LevelError is used for transport and certificate errors caught by a probe.
	LevelError Level = "error"
)

// missingValue is attached to a trailing key without a value.
const missingValue = "!MISSING"

// Logger defines the interface for logging operations.
// It provides printf-style output and leveled, structured entries
// carrying alternating key/value pairs.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
	// Info logs msg at info level with optional key/value pairs.
	Info(msg string, keyvals ...any)
	// Warn logs msg at warn level with optional key/value pairs.
	Warn(msg string, keyvals ...any)
	// Error logs msg at error level with optional key/value pairs.
	Error(msg string, keyvals ...any)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled.
// This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	l := log.New(os.Stdout, "", 0)
	return &CLILogger{logger: l}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	c.logger.SetOutput(w)
}

// Info logs msg at info level.
func (c *CLILogger) Info(msg string, keyvals ...any) { c.leveled(LevelInfo, msg, keyvals) }

// Warn logs msg at warn level.
func (c *CLILogger) Warn(msg string, keyvals ...any) { c.leveled(LevelWarn, msg, keyvals) }

// Error logs msg at error level.
func (c *CLILogger) Error(msg string, keyvals ...any) { c.leveled(LevelError, msg, keyvals) }

// leveled renders "LEVEL: msg key=value ..." on a single line.
func (c *CLILogger) leveled(level Level, msg string, keyvals []any) {
	var b strings.Builder
	b.WriteString(strings.ToUpper(string(level)))
	b.WriteString(": ")
	b.WriteString(msg)

	for _, f := range pairs(keyvals) {
		fmt.Fprintf(&b, " %s=%s", f.key, quoteIfNeeded(fmt.Sprint(f.value)))
	}

	c.logger.Println(b.String())
}

// JSONLogger implements Logger as newline-delimited JSON objects.
// Every entry carries "level" and "message"; leveled entries add their
// key/value pairs as top-level fields.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
}

// NewJSONLogger creates a new JSON logger writing to writer.
// A nil writer discards output. With silent set, nothing is written at all.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		silent: silent,
	}
}

// Printf formats and logs an info-level message.
func (j *JSONLogger) Printf(format string, v ...any) {
	j.write(LevelInfo, fmt.Sprintf(format, v...), nil)
}

// Println logs an info-level message.
func (j *JSONLogger) Println(v ...any) {
	j.write(LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n"), nil)
}

// Info logs msg at info level.
func (j *JSONLogger) Info(msg string, keyvals ...any) { j.write(LevelInfo, msg, keyvals) }

// Warn logs msg at warn level.
func (j *JSONLogger) Warn(msg string, keyvals ...any) { j.write(LevelWarn, msg, keyvals) }

// Error logs msg at error level.
func (j *JSONLogger) Error(msg string, keyvals ...any) { j.write(LevelError, msg, keyvals) }

// SetOutput sets the output destination for the JSON logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}

func (j *JSONLogger) write(level Level, msg string, keyvals []any) {
	if j.silent {
		return
	}

	entry := make(map[string]any, 2+len(keyvals)/2)
	for _, f := range pairs(keyvals) {
		entry[f.key] = jsonValue(f.value)
	}
	// Reserved keys win over caller fields.
	entry["level"] = string(level)
	entry["message"] = msg

	buf := gc.Default.Get()
	defer gc.Release(buf)

	if err := json.NewEncoder(buf).Encode(entry); err != nil {
		buf.Reset()
		fmt.Fprintf(buf, `{"level":"error","message":%q}`+"\n", "logger: "+err.Error())
	}

	j.mu.Lock()
	_, _ = buf.WriteTo(j.writer)
	j.mu.Unlock()
}

type field struct {
	key   string
	value any
}

// pairs turns alternating key/value arguments into fields.
func pairs(keyvals []any) []field {
	if len(keyvals) == 0 {
		return nil
	}

	fields := make([]field, 0, (len(keyvals)+1)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 >= len(keyvals) {
			fields = append(fields, field{key: key, value: missingValue})
			break
		}
		fields = append(fields, field{key: key, value: keyvals[i+1]})
	}
	return fields
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case error:
		return val.Error()
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return val
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
