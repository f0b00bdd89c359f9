package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"schemaguard/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the logger described by cfg as the slog default.
func Setup(cfg config.LoggingConfig) {
	slog.SetDefault(New(cfg, os.Stdout))
}

// New builds a logger from cfg. Records go to stdout unless the output is "file",
// in which case they go to a lumberjack-rotated file. Unknown levels fall back to info.
func New(cfg config.LoggingConfig, stdout io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	w := output(cfg, stdout)
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func output(cfg config.LoggingConfig, stdout io.Writer) io.Writer {
	if !strings.EqualFold(cfg.Output, "file") || cfg.FilePath == "" {
		return stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize, // megabytes
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge, // days
		Compress:   cfg.Compress,
	}
}
