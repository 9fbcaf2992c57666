package ethermq

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func parseLevel(level string) (zapcore.Level, error) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return l, fmt.Errorf("%w: invalid log level %q", ErrConfig, level)
	}

	return l, nil
}

// newLogger returns a console logger whose level follows level.
func newLogger(level zap.AtomicLevel) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()

	cfg.Level = level
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.Sugar().Named("ethermq"), nil
}
