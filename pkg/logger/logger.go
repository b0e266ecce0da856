package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var levelRank = map[LogLevel]int{
	LevelInfo:  0,
	LevelWarn:  1,
	LevelError: 2,
}

type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	UserID    *uint                  `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// Options configures the global logger. File enables a rotated copy of
// every entry next to the console output.
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	file     io.WriteCloser
	minLevel LogLevel
}

var globalLogger *Logger

func New(output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{output: output, minLevel: LevelInfo}
}

func Init() {
	globalLogger = New(os.Stdout)
}

// Setup replaces the global logger according to opts.
func Setup(opts Options) {
	l := New(os.Stdout)
	l.SetLevel(opts.Level)
	if opts.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
	}
	globalLogger = l
}

// Close flushes and closes the rotated log file, if any.
func Close() error {
	if globalLogger == nil || globalLogger.file == nil {
		return nil
	}
	return globalLogger.file.Close()
}

func ParseLevel(value string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(value))) {
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) SetLevel(value string) {
	l.minLevel = ParseLevel(value)
}

func (l *Logger) enabled(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) log(level LogLevel, action string, userID *uint, details map[string]interface{}, err error) {
	if !l.enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		UserID:    userID,
		Action:    action,
		Details:   details,
		Caller:    getCaller(),
	}

	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		data, _ = json.Marshal(LogEntry{Timestamp: entry.Timestamp, Level: level, Action: action, Error: marshalErr.Error()})
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.output == os.Stdout {
		var colorCode string
		switch level {
		case LevelError:
			colorCode = "\033[31m"
		case LevelWarn:
			colorCode = "\033[33m"
		default:
			colorCode = "\033[36m"
		}
		reset := "\033[0m"

		fmt.Fprintf(l.output, "%s%s%s\n", colorCode, string(data), reset)
	} else {
		fmt.Fprintf(l.output, "%s\n", string(data))
	}

	if l.file != nil {
		fmt.Fprintf(l.file, "%s\n", string(data))
	}
}

func (l *Logger) Info(action string, details map[string]interface{}) {
	l.log(LevelInfo, action, nil, details, nil)
}

func (l *Logger) Warn(action string, details map[string]interface{}) {
	l.log(LevelWarn, action, nil, details, nil)
}

func (l *Logger) Error(action string, err error, details map[string]interface{}) {
	l.log(LevelError, action, nil, details, err)
}

func Info(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, nil, details, nil)
	}
}

func InfoWithUser(userID uint, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelInfo, action, &userID, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, nil, details, nil)
	}
}

func WarnWithUser(userID uint, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelWarn, action, &userID, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, nil, details, err)
	}
}

func ErrorWithUser(userID uint, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(LevelError, action, &userID, details, err)
	}
}

// GetUserIDFromContext reads the id stored by the auth middleware.
func GetUserIDFromContext(c *fiber.Ctx) *uint {
	if userID := c.Locals("userID"); userID != nil {
		if id, ok := userID.(uint); ok {
			return &id
		}
	}
	return nil
}

func getCaller() string {
	if _, file, line, ok := runtime.Caller(3); ok {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}

var sensitiveFields = []string{"password", "token", "secret"}

func redactSensitiveFields(jsonMap map[string]interface{}) {
	for _, field := range sensitiveFields {
		if _, exists := jsonMap[field]; exists {
			jsonMap[field] = "[REDACTED]"
		}
	}
}

func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return "empty"
	}

	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(body, &jsonMap); err == nil {
		redactSensitiveFields(jsonMap)
		if jsonBytes, err := json.Marshal(jsonMap); err == nil {
			if len(jsonBytes) > 200 {
				return string(jsonBytes[:200]) + "..."
			}
			return string(jsonBytes)
		}
	}

	return fmt.Sprintf("binary (%d bytes)", len(body))
}

func GetResponseSizeSummary(c *fiber.Ctx) string {
	body := c.Response().Body()
	if len(body) == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d bytes", len(body))
}

func GenerateRequestID() string {
	return uuid.New().String()
}
