package logging

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the root logger. Its level can be changed while running.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// Config selects the level and output format.
type Config struct {
	Level       string // debug, info, warn, error
	Development bool   // console encoding with colors and stack traces
	OutputPaths []string
}

// New builds a logger. Production mode writes JSON with "timestamp" and
// "message" keys; development mode writes colored console lines.
func New(cfg Config) (*Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zc.EncoderConfig.TimeKey = "timestamp"
		zc.EncoderConfig.MessageKey = "message"
		zc.DisableStacktrace = true
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Level != "" {
		lvl, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = lvl
	}
	if len(cfg.OutputPaths) > 0 {
		zc.OutputPaths = cfg.OutputPaths
	}

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: l, level: zc.Level}, nil
}

// FromLevel builds a stdout logger. An unknown level falls back to the
// mode's default and is reported on the returned logger.
func FromLevel(level string, development bool) *Logger {
	l, err := New(Config{Level: level, Development: development})
	if err == nil {
		return l
	}
	l, fallbackErr := New(Config{Development: development})
	if fallbackErr != nil {
		return NewNop()
	}
	l.Warn("Ignoring log level", zap.String("level", level), zap.Error(err))
	return l
}

// NewNop discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop(), level: zap.NewAtomicLevel()}
}

// SetLevel changes the level of this logger and every child derived from it.
func (l *Logger) SetLevel(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// Level reports the current level name.
func (l *Logger) Level() string {
	return l.level.Level().String()
}

// LevelHandler serves the current level as JSON and changes it on PUT.
func (l *Logger) LevelHandler() http.Handler {
	return l.level
}

// Component returns a child logger named after a subsystem.
func (l *Logger) Component(name string, fields ...zap.Field) *zap.Logger {
	return l.Named(name).With(fields...)
}

// Window tags a log line with a browsing context id.
func Window(id string) zap.Field {
	return zap.String("window_id", id)
}
