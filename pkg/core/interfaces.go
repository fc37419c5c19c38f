package core

// Logger interface for query and export logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// ErrorLogger is a Logger that can mark a line as an error
type ErrorLogger interface {
	Logger
	Errorf(format string, args ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

// Printf implements Logger
func (NopLogger) Printf(string, ...interface{}) {}

// LogError writes an error line through Errorf when the logger supports it,
// and through Printf otherwise
func LogError(logger Logger, format string, args ...interface{}) {
	if el, ok := logger.(ErrorLogger); ok {
		el.Errorf(format, args...)
		return
	}
	logger.Printf(format, args...)
}
