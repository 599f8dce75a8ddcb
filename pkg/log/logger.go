package log

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// ParseLevel maps a level name to a LogLevel, defaulting to LevelInfo
// for unknown or empty input.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Channel identifies the feature a log line belongs to. Each channel gets
// its own color so interleaved output from concurrent resolutions stays
// readable.
type Channel string

const (
	ChannelCore        Channel = "core"
	ChannelTitle       Channel = "title"
	ChannelAudio       Channel = "audio"
	ChannelDescription Channel = "description"
	ChannelSubtitles   Channel = "subtitles"
	ChannelChannelName Channel = "channelName"
)

var channelColors = map[Channel]string{
	ChannelCore:        "\033[37m",
	ChannelTitle:       "\033[35m",
	ChannelAudio:       "\033[32m",
	ChannelDescription: "\033[36m",
	ChannelSubtitles:   "\033[33m",
	ChannelChannelName: "\033[34m",
}

const colorReset = "\033[0m"

type Logger struct {
	level   LogLevel
	channel Channel
	color   bool
	logger  *log.Logger
}

func NewLogger(level LogLevel) *Logger {
	return &Logger{
		level:   level,
		channel: ChannelCore,
		color:   isatty.IsTerminal(os.Stdout.Fd()),
		logger:  log.New(os.Stdout, "", 0),
	}
}

// SetLevel sets the minimum level that will be emitted.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

// WithChannel returns a copy of the logger tagged with the given channel.
// The copy shares the underlying writer.
func (l *Logger) WithChannel(ch Channel) *Logger {
	clone := *l
	clone.channel = ch
	return &clone
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(LevelFatal, format, args...)
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	fileName := "unknown"
	if ok {
		fileName = filepath.Base(file)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)

	tag := fmt.Sprintf("[%s]", l.channel)
	if l.color {
		if c, ok := channelColors[l.channel]; ok {
			tag = fmt.Sprintf("%s[%s]%s", c, l.channel, colorReset)
		}
	}

	logEntry := fmt.Sprintf("[%s] [%s] %s [%s:%d] %s",
		timestamp,
		levelNames[level],
		tag,
		fileName,
		line,
		message)

	l.logger.Println(logEntry)
}

// Global logger instance
var globalLogger *Logger

func InitLogger(level LogLevel) {
	globalLogger = NewLogger(level)
}

func GetLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger(LevelInfo)
	}
	return globalLogger
}

// ForChannel returns the global logger tagged with the given channel.
func ForChannel(ch Channel) *Logger {
	return GetLogger().WithChannel(ch)
}

// Convenience functions
func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLogger().Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}

func Fatal(format string, args ...interface{}) {
	GetLogger().Fatal(format, args...)
}
