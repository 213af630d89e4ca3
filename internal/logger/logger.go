package logger

import (
	"io"
	"log"
	"os"
)

var (
	// Default logger
	defaultLogger *log.Logger

	// Verbose mode
	verbose bool

	// Silent mode
	silent bool
)

// Init initializes the logger
func Init(verboseMode bool, silentMode bool) {
	verbose = verboseMode
	silent = silentMode

	defaultLogger = log.New(os.Stdout, "", log.LstdFlags)

	// Route the standard log package through the same destination
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)
}

// SetOutput sets the output destination for the logger
func SetOutput(w io.Writer) {
	ensure()
	defaultLogger.SetOutput(w)
	log.SetOutput(w)
}

// ensure guarantees a usable logger even when Init was never called,
// e.g. from library code exercised by tests
func ensure() {
	if defaultLogger == nil {
		defaultLogger = log.New(os.Stdout, "", log.LstdFlags)
	}
}

// Info logs an informational message
func Info(format string, v ...interface{}) {
	ensure()
	if !silent {
		defaultLogger.Printf("[INFO] "+format, v...)
	}
}

// Debug logs a debug message (only in verbose mode)
func Debug(format string, v ...interface{}) {
	ensure()
	if verbose && !silent {
		defaultLogger.Printf("[DEBUG] "+format, v...)
	}
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	ensure()
	if !silent {
		defaultLogger.Printf("[WARN] "+format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	ensure()
	defaultLogger.Printf("[ERROR] "+format, v...)
}

// Fatal logs a fatal error message and exits
func Fatal(format string, v ...interface{}) {
	ensure()
	defaultLogger.Fatalf("[FATAL] "+format, v...)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose
}

// IsSilent returns true if silent mode is enabled
func IsSilent() bool {
	return silent
}
