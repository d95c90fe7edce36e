// Package sklogimpl defines the interface for the logging implementation used
// by sklog. It exists as a separate package so implementations can be swapped
// at startup without import cycles.
package sklogimpl

// Severity identifies the sort of log: info, warning etc.
type Severity int

const (
	Debug Severity = iota
	Info
	Warning
	Error
	Fatal
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Debug:
		return "Debug"
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// Logger is implemented by all sklog logging backends. Logging at Fatal
// severity is expected to exit the program after flushing.
type Logger interface {
	// Log emits a single log entry. depth indicates how many stack frames to
	// skip when reporting the log call site; fmt may be empty, in which case
	// the args are formatted as with fmt.Sprint.
	Log(depth int, severity Severity, fmt string, args ...interface{})

	// Flush writes any buffered log entries.
	Flush()
}

var logger Logger

// SetLogger changes the logging implementation. It must be called before any
// logging happens; it is not safe to call concurrently with logging.
func SetLogger(l Logger) {
	logger = l
}

// Log forwards to the configured Logger.
func Log(depth int, severity Severity, fmt string, args ...interface{}) {
	logger.Log(depth+1, severity, fmt, args...)
}

// Flush forwards to the configured Logger.
func Flush() {
	logger.Flush()
}
