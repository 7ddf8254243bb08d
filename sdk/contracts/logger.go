package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel indicates informational messages that highlight progress.
	InfoLevel LogLevel = iota
	// DebugLevel indicates messages useful for troubleshooting.
	DebugLevel
	// ErrorLevel indicates serious issues that need attention.
	ErrorLevel
	// WarnLevel indicates potentially harmful situations.
	WarnLevel
)

// Field builds a single structured log field.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Error(key string, val error) Field
	Uint8(key string, val uint8) Field
}

// Logger provides leveled, structured logging for the library and its
// transports.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
}
