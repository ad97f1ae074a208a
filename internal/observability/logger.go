package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

type loggerOptions struct {
	console bool
	output  string
}

// LoggerOption customises NewLogger.
type LoggerOption func(*loggerOptions)

// Console switches to the human-readable encoder on stderr, for dev mode and storectl.
func Console() LoggerOption {
	return func(o *loggerOptions) {
		o.console = true
		o.output = "stderr"
	}
}

// NewLogger builds the storefront logger. Production output is JSON on stdout with
// severity/timestamp/message keys; unknown levels fall back to info.
func NewLogger(levelName string, opts ...LoggerOption) (*zap.Logger, error) {
	o := loggerOptions{output: "stdout"}
	for _, opt := range opts {
		opt(&o)
	}

	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(levelName)))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	encoding := "json"
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "message",
		TimeKey:        "timestamp",
		LevelKey:       "severity",
		NameKey:        "logger",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if o.console {
		encoding = "console"
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoderCfg.EncodeDuration = zapcore.StringDurationEncoder
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          encoding,
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{o.output},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: !o.console,
	}
	return cfg.Build()
}
