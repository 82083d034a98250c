package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
)

type Logger struct {
	serviceName string
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

// Level ordering used by LOG_LEVEL. Messages below the configured level are dropped.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

var minLevel = parseLevel(os.Getenv("LOG_LEVEL"))

func parseLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// SetLevel overrides LOG_LEVEL, e.g. to quiet tests.
func SetLevel(level string) {
	minLevel = parseLevel(level)
}

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(2)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if minLevel > LevelInfo {
		return
	}
	formatted := l.formatMessage("INFO", INFO_EMOJI, fmt.Sprintf(msg, args...))
	color.Cyan(formatted)
}

func (l *Logger) Success(msg string, args ...interface{}) {
	if minLevel > LevelInfo {
		return
	}
	formatted := l.formatMessage("SUCCESS", SUCCESS_EMOJI, fmt.Sprintf(msg, args...))
	color.Green(formatted)
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if minLevel > LevelWarn {
		return
	}
	formatted := l.formatMessage("WARN", WARN_EMOJI, fmt.Sprintf(msg, args...))
	color.Yellow(formatted)
}

// Error logs msg followed by err and returns err wrapped with msg.
// A trailing ": %v" in msg is accepted for the error and stripped.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	base := strings.TrimSuffix(strings.TrimSpace(msg), "%v")
	base = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(base), ":"))
	if len(args) > 0 {
		base = fmt.Sprintf(base, args...)
	}
	formatted := l.formatMessage("ERROR", ERROR_EMOJI, fmt.Sprintf("%s: %v", base, err))
	color.Red(formatted)
	return fmt.Errorf("%s: %w", base, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if minLevel > LevelDebug {
		return
	}
	formatted := l.formatMessage("DEBUG", DEBUG_EMOJI, fmt.Sprintf(msg, args...))
	color.Magenta(formatted)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, args ...interface{}) {
	formatted := l.formatMessage("FATAL", ERROR_EMOJI, fmt.Sprintf(msg, args...))
	color.Red(formatted)
	os.Exit(1)
}
