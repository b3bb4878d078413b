// Package logger builds the application's zap loggers on top of
// size-rotated log files.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"rapport/internal/config"
)

// New returns a JSON file logger with rotation. It writes to the file
// only, which keeps the terminal free for the interactive UI.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	core := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator(cfg.File)), level(cfg.Level))
	return zap.New(core, zap.AddCaller()), nil
}

// NewWithConsole returns a logger that tees rotated JSON file output with
// human-readable console output. Meant for the HTTP server, where stdout
// is not occupied by a UI.
func NewWithConsole(cfg config.LogConfig) (*zap.Logger, error) {
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	fileCore := zapcore.NewCore(jsonEncoder(), zapcore.AddSync(rotator(cfg.File)), level(cfg.Level))
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		level(cfg.Level),
	)
	return zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller()), nil
}

func rotator(file string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func jsonEncoder() zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.MessageKey = "message"
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encCfg)
}

func level(name string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
