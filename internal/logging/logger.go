// Package logging provides categorized file-based debug logging for sparlo.
// Logs are written per category under the configured directory. The logger
// is configured once at startup by explicit injection; when disabled it is
// a silent no-op, so hot paths can log unconditionally.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup and configuration
	CategoryPipeline Category = "pipeline" // Validation pipeline orchestration
	CategoryResolver Category = "resolver" // Format variant resolution
	CategoryMigrate  Category = "migrate"  // Version detection and migration
	CategoryStore    Category = "store"    // Report archive operations
	CategoryWatch    Category = "watch"    // Inbox watcher events
	CategoryAPI      Category = "api"      // Generator API calls
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Config controls logger behavior. Supplied by the caller at startup;
// the package never reads configuration from disk itself.
type Config struct {
	// Enabled turns file logging on. When false every call is a no-op.
	Enabled bool

	// Dir is the log directory, created on demand.
	Dir string

	// Level is the minimum level: debug, info, warn, error.
	Level string

	// Categories filters by category name; empty means all enabled.
	Categories map[string]bool
}

var (
	mu      sync.RWMutex
	cfg     Config
	loggers = make(map[Category]*Logger)

	// logLevel is read on every log call without the mutex.
	logLevel atomic.Int32
)

func init() { logLevel.Store(LevelInfo) }

// Initialize applies the logging configuration. Call once at startup
// before any Get.
func Initialize(c Config) error {
	mu.Lock()
	defer mu.Unlock()

	cfg = c
	switch c.Level {
	case "debug":
		logLevel.Store(LevelDebug)
	case "info", "":
		logLevel.Store(LevelInfo)
	case "warn", "warning":
		logLevel.Store(LevelWarn)
	case "error":
		logLevel.Store(LevelError)
	default:
		logLevel.Store(LevelInfo)
	}

	if !c.Enabled {
		return nil
	}
	if c.Dir == "" {
		return fmt.Errorf("logging enabled but no directory configured")
	}
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	return nil
}

// Logger writes to one category's log file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

func categoryEnabled(category Category) bool {
	if !cfg.Enabled {
		return false
	}
	if len(cfg.Categories) == 0 {
		return true
	}
	enabled, exists := cfg.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. A no-op logger is
// returned when logging or the category is disabled.
func Get(category Category) *Logger {
	mu.RLock()
	if !categoryEnabled(category) {
		mu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	dir := cfg.Dir
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel.Load() > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Timer measures an operation's duration and logs it on Stop.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// Convenience helpers; no-ops when the category is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Pipeline logs to the pipeline category.
func Pipeline(format string, args ...interface{}) { Get(CategoryPipeline).Info(format, args...) }

// PipelineDebug logs debug to the pipeline category.
func PipelineDebug(format string, args ...interface{}) {
	Get(CategoryPipeline).Debug(format, args...)
}

// Resolver logs to the resolver category.
func Resolver(format string, args ...interface{}) { Get(CategoryResolver).Info(format, args...) }

// Migrate logs to the migrate category.
func Migrate(format string, args ...interface{}) { Get(CategoryMigrate).Info(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreDebug logs debug to the store category.
func StoreDebug(format string, args ...interface{}) { Get(CategoryStore).Debug(format, args...) }

// Watch logs to the watch category.
func Watch(format string, args ...interface{}) { Get(CategoryWatch).Info(format, args...) }

// WatchWarn logs warning to the watch category.
func WatchWarn(format string, args ...interface{}) { Get(CategoryWatch).Warn(format, args...) }

// API logs to the api category.
func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

// APIError logs error to the api category.
func APIError(format string, args ...interface{}) { Get(CategoryAPI).Error(format, args...) }
