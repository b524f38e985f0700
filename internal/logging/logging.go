package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// LogLevel is the severity of a message. Messages below the current level are
// dropped.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

var (
	level     atomic.Int32
	levelOnce sync.Once
)

// ParseLevel converts a level name into a LogLevel. Unknown or empty names
// map to LevelInfo and ok=false.
func ParseLevel(name string) (LogLevel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	for l, n := range levelNames {
		if n == name {
			return LogLevel(l), true
		}
	}
	return LevelInfo, false
}

// initLevel reads DEBUG, then LOG_LEVEL, once.
func initLevel() {
	levelOnce.Do(func() {
		switch strings.ToLower(os.Getenv("DEBUG")) {
		case "1", "true", "yes", "on":
			level.Store(int32(LevelDebug))
			return
		}
		l, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
		level.Store(int32(l))
	})
}

// SetLevel overrides the level derived from the environment.
func SetLevel(l LogLevel) {
	initLevel()
	level.Store(int32(l))
}

// SetOutput redirects all log output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func GetLevel() LogLevel {
	initLevel()
	return LogLevel(level.Load())
}

func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(l LogLevel, tag, format string, args []any) {
	if GetLevel() <= l {
		log.Printf(tag+format, args...)
	}
}

func Debug(format string, args ...any) { logf(LevelDebug, "[DEBUG] ", format, args) }
func Info(format string, args ...any)  { logf(LevelInfo, "[INFO] ", format, args) }
func Warn(format string, args ...any)  { logf(LevelWarn, "[WARN] ", format, args) }
func Error(format string, args ...any) { logf(LevelError, "[ERROR] ", format, args) }

// Fatal logs regardless of level and exits with status 1.
func Fatal(format string, args ...any) {
	log.Fatalf("[FATAL] "+format, args...)
}

func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("unknown(%d)", l)
}
