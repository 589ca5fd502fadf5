package logger

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger represents a logger instance
type Logger struct {
	*zap.SugaredLogger
}

// Config controls the global logger
type Config struct {
	Level       string // debug, info, warn or error
	Environment string // "production" switches to JSON output
	FilePath    string // optional rotating log file in addition to stdout
	MaxSizeMB   int
	MaxBackups  int
	MaxAgeDays  int
	Output      io.Writer // console destination, stdout when nil
}

var (
	globalLogger *Logger
	once         sync.Once
	mu           sync.RWMutex
)

// Init initializes the global logger instance. Only the first call has an effect.
func Init(cfg Config) {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		globalLogger = &Logger{build(cfg).Sugar()}
	})
}

func build(cfg Config) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Environment == "production" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(out), level),
	}

	// The file always gets JSON so it can be shipped as-is
	if cfg.FilePath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(fileWriter),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
}

// ParseLevel maps a level name to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// GetLogger returns a logger instance with the given name
func GetLogger(name string) *Logger {
	mu.RLock()
	initialized := globalLogger != nil
	mu.RUnlock()

	if !initialized {
		Init(Config{Level: "info", Environment: "development"})
	}

	mu.RLock()
	defer mu.RUnlock()
	return &Logger{
		globalLogger.Named(name),
	}
}

// NewNop returns a logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Debug logs a debug message
func (l *Logger) Debug(args ...interface{}) {
	l.SugaredLogger.Debug(args...)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.SugaredLogger.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(args ...interface{}) {
	l.SugaredLogger.Info(args...)
}

// Infof logs a formatted informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.SugaredLogger.Infof(format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.SugaredLogger.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(args ...interface{}) {
	l.SugaredLogger.Error(args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.SugaredLogger.Errorf(format, args...)
}

// Fatalf logs a formatted fatal message and exits the application
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.SugaredLogger.Fatalf(format, args...)
}

// With returns a logger with additional structured context
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		l.SugaredLogger.With(args...),
	}
}

// Sync ensures all buffered logs are written
func (l *Logger) Sync() error {
	return l.SugaredLogger.Sync()
}
