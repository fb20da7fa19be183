package logger

import (
	"log"
	"os"
)

var std = log.New(os.Stdout, "[neberku] ", log.LstdFlags)

// Init sets up the printf-style bootstrap logger used before the structured logger is ready
func Init() {
	std.SetFlags(log.LstdFlags | log.Lmicroseconds)
}

// Info logs an informational bootstrap message
func Info(format string, args ...interface{}) {
	std.Printf("[INFO] "+format, args...)
}

// Warn logs a bootstrap warning
func Warn(format string, args ...interface{}) {
	std.Printf("[WARN] "+format, args...)
}

// Error logs a bootstrap error
func Error(format string, args ...interface{}) {
	std.Printf("[ERROR] "+format, args...)
}
