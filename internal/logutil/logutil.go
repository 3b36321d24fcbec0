package logutil

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync/atomic"
	"time"
)

var (
	logger  = log.New(os.Stderr, "", 0)
	verbose atomic.Bool
)

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose toggles debug-level output.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Debug logs a structured debug message when verbose output is enabled.
func Debug(msg string, fields map[string]interface{}) {
	if !verbose.Load() {
		return
	}
	logJSON("debug", msg, fields)
}

// Info logs a structured info message.
func Info(msg string, fields map[string]interface{}) {
	logJSON("info", msg, fields)
}

// Warn logs a structured warning, attaching err when present.
func Warn(msg string, err error, fields map[string]interface{}) {
	logJSON("warn", msg, withError(fields, err))
}

// Error logs a structured error message including the error string.
func Error(msg string, err error, fields map[string]interface{}) {
	logJSON("error", msg, withError(fields, err))
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	return fields
}

func logJSON(level, msg string, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"level":     level,
		"message":   msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range fields {
		entry[k] = v
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		logger.Printf("%s: %+v", msg, fields)
		return
	}
	logger.Printf("%s", payload)
}
