package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures NewLogger.
type Options struct {
	// Env selects the encoder: prod logs JSON, local/dev/docker/test log colored console lines.
	Env string
	// Level overrides the env default when non-empty: debug, info, warn, error.
	Level string
	// Quiet sends logs to stderr only and raises the floor to warn, for CLI commands that print results.
	Quiet bool
	// Fields are attached to every entry (service, version).
	Fields []zap.Field
}

// NewLogger creates a zap logger for the given options.
func NewLogger(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	switch opts.Env {
	case "prod":
		cfg = zap.NewProductionConfig()
	case "local", "dev", "docker", "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", opts.Env)
	}

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	if opts.Quiet {
		cfg.OutputPaths = []string{"stderr"}
		if cfg.Level.Level() < zapcore.WarnLevel {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel), zap.Fields(opts.Fields...))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l, nil
}
