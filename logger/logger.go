package logger

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity, lowest first.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

// ParseLevel maps a LOG_LEVEL value to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	case FATAL:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger is a printf-style facade over a zap sugared logger.
type Logger struct {
	level *zap.AtomicLevel
	sugar *zap.SugaredLogger
}

type Config struct {
	Level        Level
	Output       io.Writer
	TimeFormat   string
	EnableCaller bool
	// JSON selects the JSON encoder; otherwise console output is used.
	JSON bool
}

// New builds a Logger writing to config.Output (stdout when nil).
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.TimeFormat == "" {
		config.TimeFormat = "2006-01-02 15:04:05"
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(config.TimeFormat)
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if config.JSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	atom := zap.NewAtomicLevelAt(config.Level.zapLevel())
	core := zapcore.NewCore(enc, zapcore.AddSync(config.Output), atom)

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if config.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}

	return &Logger{
		level: &atom,
		sugar: zap.New(core, opts...).Sugar(),
	}
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.level.SetLevel(level.zapLevel())
}

func (l *Logger) Debug(message string, args ...interface{}) {
	l.sugar.Debugf(message, args...)
}

func (l *Logger) Info(message string, args ...interface{}) {
	l.sugar.Infof(message, args...)
}

func (l *Logger) Warn(message string, args ...interface{}) {
	l.sugar.Warnf(message, args...)
}

func (l *Logger) Error(message string, args ...interface{}) {
	l.sugar.Errorf(message, args...)
}

// Fatal logs at FATAL and calls os.Exit(1).
func (l *Logger) Fatal(message string, args ...interface{}) {
	l.sugar.Fatalf(message, args...)
}

// WithFields creates a logger that attaches the given fields to every entry.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return &Logger{
		level: l.level,
		sugar: l.sugar.With(kv...),
	}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

var defaultLogger = New(Config{Level: INFO})

// SetDefault replaces the logger used by the package-level functions.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// Debug, Info, Warn, Error and Fatal log through the default logger.

func Debug(message string, args ...interface{}) {
	defaultLogger.Debug(message, args...)
}

func Info(message string, args ...interface{}) {
	defaultLogger.Info(message, args...)
}

func Warn(message string, args ...interface{}) {
	defaultLogger.Warn(message, args...)
}

func Error(message string, args ...interface{}) {
	defaultLogger.Error(message, args...)
}

func Fatal(message string, args ...interface{}) {
	defaultLogger.Fatal(message, args...)
}
