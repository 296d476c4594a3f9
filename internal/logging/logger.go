package logging

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/telcoscope/internal/model"
)

var (
	current     atomic.Pointer[zap.Logger]
	activeLevel atomic.Pointer[zap.AtomicLevel]
)

// L returns the process logger. It is a no-op logger until Init or Set is called.
func L() *zap.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

// Set replaces the process logger
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	current.Store(l)
}

// Init builds a logger from the logging config and installs it
func Init(cfg model.LoggingConfig) (*zap.Logger, error) {
	l, lvl, err := build(cfg)
	if err != nil {
		return nil, err
	}
	Set(l)
	activeLevel.Store(&lvl)
	return l, nil
}

// New builds a zap logger: level, json or console encoding, and stderr, stdout or a file
func New(cfg model.LoggingConfig) (*zap.Logger, error) {
	l, _, err := build(cfg)
	return l, err
}

// SetLevel changes the level of the logger installed by Init without rebuilding it
func SetLevel(name string) error {
	lvl, err := parseLevel(name)
	if err != nil {
		return err
	}
	if al := activeLevel.Load(); al != nil {
		al.SetLevel(lvl)
	}
	return nil
}

func parseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		name = "info"
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return lvl, fmt.Errorf("invalid log level: %w", err)
	}
	return lvl, nil
}

func build(cfg model.LoggingConfig) (*zap.Logger, zap.AtomicLevel, error) {
	parsed, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	level := zap.NewAtomicLevelAt(parsed)

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var sink zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stderr":
		sink = zapcore.Lock(os.Stderr)
	case "stdout":
		sink = zapcore.Lock(os.Stdout)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, level, fmt.Errorf("open log file: %w", err)
		}
		sink = zapcore.AddSync(file)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), level, nil
}
