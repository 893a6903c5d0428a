// Package logging builds the service's zap logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format is json or console
	Format string `env:"LOG_FORMAT" envDefault:"json"`

	// Output is stdout, stderr or a file path
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`

	Development bool `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// New returns a logger for cfg and a func that releases its output. An
// unknown level falls back to info.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	output := cfg.Output
	if output == "" {
		output = "stdout"
	}
	// zap.Open understands stdout and stderr and leaves them open on close
	ws, closeOutput, err := zap.Open(output)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(encoder, ws, level)
	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	logger := zap.New(core, opts...)
	return logger, func() {
		_ = logger.Sync()
		closeOutput()
	}, nil
}
