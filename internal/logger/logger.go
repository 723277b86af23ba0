package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/nightstay/backend-go/internal/config"
)

func New(cfg *config.Config) *slog.Logger {
	logger := slog.New(newHandler(cfg, output(cfg)))

	slog.SetDefault(logger)

	return logger
}

// output writes to stdout, and additionally to a rotating file when LOG_FILE is set.
func output(cfg *config.Config) io.Writer {
	if cfg.LogFile == "" {
		return os.Stdout
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	return io.MultiWriter(os.Stdout, fileWriter)
}

func newHandler(cfg *config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if strings.ToLower(cfg.AppEnv) == "production" {
		// JSON format
		return slog.NewJSONHandler(w, opts)
	}
	// Human-readable format
	return slog.NewTextHandler(w, opts)
}
