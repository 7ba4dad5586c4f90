package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level        string
	LogstashAddr string
	Development  bool
}

// New builds the process logger: zap's production JSON encoder on stderr,
// teed to Logstash when an address is configured. The returned close func
// flushes the logger and drops the Logstash connection.
func New(cfg Config) (*zap.Logger, func(), error) {
	logConfig := zap.NewProductionConfig()
	if cfg.Development {
		logConfig = zap.NewDevelopmentConfig()
	}
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.EncoderConfig.TimeKey = "timestamp"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if strings.TrimSpace(cfg.LogstashAddr) == "" {
		logger, err := logConfig.Build()
		if err != nil {
			return nil, nil, err
		}
		return logger, func() { _ = logger.Sync() }, nil
	}

	writer, err := NewLogstashWriter(cfg.LogstashAddr)
	if err != nil {
		return nil, nil, err
	}
	logstashCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(logConfig.EncoderConfig),
		writer,
		logConfig.Level,
	)
	logger, err := logConfig.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, logstashCore)
	}))
	if err != nil {
		_ = writer.Close()
		return nil, nil, err
	}
	return logger, func() {
		_ = logger.Sync()
		_ = writer.Close()
	}, nil
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(strings.ToLower(raw))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}
