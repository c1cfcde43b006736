package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/regenrek/clikit/output"
)

type InitOptions struct {
	App     string
	Version string
	// Verbosity lowers the configured level: 1 means info, 2 or more debug.
	Verbosity int
	// Stderr backs the stderr sink. Defaults to os.Stderr.
	Stderr io.Writer
	// Color applies to the console format.
	Color output.ColorMode
}

// New builds a logger from cfg layered over DefaultConfig and the CLIKIT_LOG_*
// environment. The returned func closes the file sink, if any.
func New(cfg Config, opts InitOptions) (*slog.Logger, func() error, error) {
	if opts.App == "" {
		opts.App = "clikit"
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	normalized, err := DefaultConfig().Merge(cfg).WithEnv().Normalize()
	if err != nil {
		return nil, nil, err
	}

	sink := SinkStderr
	if normalized.Sink != nil {
		sink = Sink(*normalized.Sink)
	}
	writer, closeFn, dirWarning, err := resolveWriter(normalized, sink, opts)
	if err != nil {
		return nil, nil, err
	}

	level := applyVerbosity(parseLevel(normalized.Level), opts.Verbosity)
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: normalized.AddSource != nil && *normalized.AddSource,
	}
	format := FormatConsole
	if normalized.Format != nil {
		format = Format(*normalized.Format)
	}
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(writer, handlerOpts)
	default:
		styles := output.Plain(writer)
		if sink == SinkStderr {
			styles = output.NewStyles(writer, opts.Color)
		}
		handler = output.NewConsoleHandler(writer, styles, level)
	}

	logger := slog.New(handler)
	if format != FormatConsole {
		logger = logger.With(slog.String("app", opts.App), slog.String("version", opts.Version))
	}
	if dirWarning != "" {
		logger.Warn(dirWarning)
	}
	return logger, closeFn, nil
}

// Init builds the logger and installs it as the slog default.
func Init(cfg Config, opts InitOptions) (*slog.Logger, func() error, error) {
	logger, closeFn, err := New(cfg, opts)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func parseLevel(value *string) slog.Level {
	if value == nil {
		return slog.LevelWarn
	}
	switch strings.ToLower(strings.TrimSpace(*value)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func resolveWriter(cfg Config, sink Sink, opts InitOptions) (io.Writer, func() error, string, error) {
	noop := func() error { return nil }
	switch sink {
	case SinkNone:
		return io.Discard, noop, "", nil
	case SinkStderr:
		return opts.Stderr, noop, "", nil
	case SinkFile:
		path := ""
		explicit := false
		if cfg.File != nil {
			path = *cfg.File
			explicit = true
		}
		if path == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				return nil, nil, "", fmt.Errorf("logging: resolve cache dir: %w", err)
			}
			path = filepath.Join(dir, opts.App, opts.App+".log")
		}
		warning, err := prepareLogDir(filepath.Dir(path), explicit)
		if err != nil {
			return nil, nil, "", err
		}
		rot := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    derefInt(cfg.MaxSizeMB, 10),
			MaxBackups: derefInt(cfg.MaxBackups, 3),
			MaxAge:     derefInt(cfg.MaxAgeDays, 14),
			Compress:   cfg.Compress == nil || *cfg.Compress,
		}
		return rot, rot.Close, warning, nil
	default:
		return nil, nil, "", fmt.Errorf("logging: unknown sink %q", sink)
	}
}

func derefInt(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
