package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/searchsync/internal/version"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options selects how the process logger writes. Empty Level and Format fall
// back to the environment's profile.
type Options struct {
	Env    string
	Level  string
	Format string
}

type profile struct {
	format string
	level  zapcore.Level
}

// Containers ship JSON to a collector; workstations get colored console lines.
var profiles = map[string]profile{
	"prod":   {format: FormatJSON, level: zapcore.InfoLevel},
	"docker": {format: FormatJSON, level: zapcore.InfoLevel},
	"dev":    {format: FormatConsole, level: zapcore.DebugLevel},
	"local":  {format: FormatConsole, level: zapcore.DebugLevel},
}

// New builds the searchsync process logger. Env "test" discards everything.
// Every line carries the service name, env and build version.
func New(opts Options) (*zap.Logger, error) {
	if opts.Env == "test" {
		return zap.NewNop(), nil
	}
	p, ok := profiles[opts.Env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", opts.Env)
	}

	level := p.level
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}
	format := p.format
	if opts.Format != "" {
		format = opts.Format
	}

	cfg, err := configFor(format)
	if err != nil {
		return nil, err
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(
		zap.String("service", "searchsync"),
		zap.String("env", opts.Env),
		zap.String("version", version.Version),
	), nil
}

func configFor(format string) (zap.Config, error) {
	switch format {
	case FormatJSON:
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg, nil
	case FormatConsole:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg, nil
	default:
		return zap.Config{}, fmt.Errorf("unknown log format %q", format)
	}
}
