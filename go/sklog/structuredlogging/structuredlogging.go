// Package structuredlogging implements sklogimpl.Logger and logs to either
// stderr or stdout as JSON entries, one per line. It is intended to be used
// where logs are ingested by a collector that understands structured logs.
package structuredlogging

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"cloud.google.com/go/logging"
	"cloud.google.com/go/logging/apiv2/loggingpb"

	"github.com/cncf/clotributor/go/sklog/sklogimpl"
)

// StructuredLogger writes log entries as JSON.
type StructuredLogger struct {
	logger *logging.Logger
}

// New returns a StructuredLogger that writes JSON entries to the given file.
func New(ctx context.Context, file *os.File) (*StructuredLogger, error) {
	logsClient, err := logging.NewClient(
		ctx, "fake-project-id" /* Unused with RedirectAsJSON */)
	if err != nil {
		return nil, err
	}
	logger := logsClient.Logger(
		"fake-log-id", /* Unused with RedirectAsJSON */
		logging.RedirectAsJSON(file))
	return &StructuredLogger{
		logger: logger,
	}, nil
}

// Flush implements sklogimpl.Logger.
func (s *StructuredLogger) Flush() {
	if err := s.logger.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logging.Logger: %s", err)
	}
}

// Log implements sklogimpl.Logger.
func (s *StructuredLogger) Log(depth int, severity sklogimpl.Severity, tmpl string, args ...interface{}) {
	var buf bytes.Buffer
	if tmpl == "" {
		fmt.Fprint(&buf, args...)
	} else {
		fmt.Fprintf(&buf, tmpl, args...)
	}
	s.emit(depth, severity, buf.String())
	if severity == sklogimpl.Fatal {
		trace := stacks(true)
		s.emit(depth, severity, string(trace))
		s.Flush()
		os.Exit(255)
	}
}

func (s *StructuredLogger) emit(depth int, severity sklogimpl.Severity, msg string) {
	s.logger.Log(logging.Entry{
		Payload:        msg,
		Severity:       convertSeverity(severity),
		SourceLocation: sourceLocation(depth),
	})
}

// stacks is a wrapper for runtime.Stack that attempts to recover the data
// for all goroutines.
func stacks(all bool) []byte {
	n := 10000
	if all {
		n = 100000
	}
	var trace []byte
	for i := 0; i < 5; i++ {
		trace = make([]byte, n)
		nbytes := runtime.Stack(trace, all)
		if nbytes < len(trace) {
			return trace[:nbytes]
		}
		n *= 2
	}
	return trace
}

func convertSeverity(severity sklogimpl.Severity) logging.Severity {
	switch severity {
	case sklogimpl.Debug:
		return logging.Debug
	case sklogimpl.Info:
		return logging.Info
	case sklogimpl.Warning:
		return logging.Warning
	case sklogimpl.Error:
		return logging.Error
	case sklogimpl.Fatal:
		return logging.Alert
	default:
		return logging.Default
	}
}

func sourceLocation(depth int) *loggingpb.LogEntrySourceLocation {
	_, file, line, ok := runtime.Caller(3 + depth)
	if !ok {
		return nil
	}
	slash := strings.LastIndex(file, "/")
	if slash >= 0 {
		file = file[slash+1:]
	}
	return &loggingpb.LogEntrySourceLocation{
		File: file,
		Line: int64(line),
	}
}
