package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger provides leveled logging with verbose mode support.
type Logger struct {
	verbose bool
	out     io.Writer
	mu      sync.RWMutex
}

var (
	loggerInstance *Logger
	once           sync.Once
)

// GetLogger returns the singleton logger instance.
func GetLogger() *Logger {
	once.Do(func() {
		loggerInstance = &Logger{
			verbose: false,
			out:     os.Stderr,
		}
	})
	return loggerInstance
}

// NewLogger returns an independent logger writing to w. Used where an
// injected logger is wanted instead of the process-wide one.
func NewLogger(w io.Writer) *Logger {
	return &Logger{out: w}
}

// SetVerboseMode sets the verbose mode globally.
func SetVerboseMode(verbose bool) {
	GetLogger().SetVerbose(verbose)
}

// SetVerbose sets the verbose mode for this logger instance.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// IsVerbose returns whether verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// formatMessage formats a message with optional printf-style arguments.
func formatMessage(msgOrFormat string, args ...interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(msgOrFormat, args...)
	}
	return msgOrFormat
}

// Debug logs a debug message (only shown when verbose=true).
func (l *Logger) Debug(msgOrFormat string, args ...interface{}) {
	if !l.IsVerbose() {
		return
	}
	fmt.Fprintf(l.out, "%s [DEBUG] %s\n", time.Now().Format("15:04:05"), formatMessage(msgOrFormat, args...))
}

// Info logs an info message (always shown).
func (l *Logger) Info(msgOrFormat string, args ...interface{}) {
	fmt.Fprintf(l.out, "[INFO] %s\n", formatMessage(msgOrFormat, args...))
}

// Warn logs a warning message (always shown).
func (l *Logger) Warn(msgOrFormat string, args ...interface{}) {
	fmt.Fprintf(l.out, "[WARN] %s\n", formatMessage(msgOrFormat, args...))
}

// Error logs an error message (always shown).
func (l *Logger) Error(msgOrFormat string, args ...interface{}) {
	fmt.Fprintf(l.out, "[ERROR] %s\n", formatMessage(msgOrFormat, args...))
}

// Debugf logs a debug message using the global logger.
func Debugf(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

// Infof logs an info message using the global logger.
func Infof(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

// Warnf logs a warning message using the global logger.
func Warnf(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

// Errorf logs an error message using the global logger.
func Errorf(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

// FileLogger provides logging for the long-running bot process to a
// PID-specific file, degrading to io.Discard when the file cannot be opened.
type FileLogger struct {
	logger   *log.Logger
	logFile  *os.File
	enabled  bool
	filePath string
}

// NewFileLogger creates a file logger with a PID-specific log file in the
// system temp directory.
func NewFileLogger() (*FileLogger, error) {
	logPath := fmt.Sprintf("%s/listbot-%d.log", os.TempDir(), os.Getpid())
	return NewFileLoggerWithPath(logPath)
}

// NewFileLoggerWithPath creates a file logger with a custom path.
func NewFileLoggerWithPath(path string) (*FileLogger, error) {
	fl := &FileLogger{filePath: path}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Gracefully degrade to io.Discard
		fl.logger = log.New(io.Discard, "", log.LstdFlags)
		return fl, err
	}

	fl.logFile = file
	fl.logger = log.New(file, "", log.LstdFlags)
	fl.enabled = true
	return fl, nil
}

// Printf logs a formatted message.
func (fl *FileLogger) Printf(format string, args ...interface{}) {
	if fl.logger != nil {
		fl.logger.Printf(format, args...)
	}
}

// Println logs a message with a newline.
func (fl *FileLogger) Println(args ...interface{}) {
	if fl.logger != nil {
		fl.logger.Println(args...)
	}
}

// Close closes the log file.
func (fl *FileLogger) Close() {
	if fl.logFile != nil {
		_ = fl.logFile.Close()
		fl.logFile = nil
	}
	fl.logger = log.New(io.Discard, "", log.LstdFlags)
	fl.enabled = false
}

// GetLogPath returns the log file path.
func (fl *FileLogger) GetLogPath() string {
	return fl.filePath
}

// IsEnabled returns whether file logging is enabled.
func (fl *FileLogger) IsEnabled() bool {
	return fl.enabled
}
