package log

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	l *zap.SugaredLogger
}

// NewZapLogger: "prod" ghi JSON, "local"/"dev" ghi console có màu.
// level rỗng thì giữ mức mặc định của môi trường.
func NewZapLogger(env, level string) (*ZapLogger, error) {
	var config zap.Config
	switch env {
	case "prod":
		config = zap.NewProductionConfig()
	case "", "local", "dev":
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := config.Build(zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.DPanicLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &ZapLogger{l: l.Sugar()}, nil
}

func NewNopLogger() *ZapLogger {
	return &ZapLogger{l: zap.NewNop().Sugar()}
}

func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	if id := RunIDFromContext(ctx); id != "" {
		return z.l.With("run_id", id)
	}
	return z.l
}

func (z *ZapLogger) Info(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Infof(format, args...)
}

func (z *ZapLogger) Alert(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Errorf("[ALERT] "+format, args...)
}

func (z *ZapLogger) Error(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Errorf(format, args...)
}

func (z *ZapLogger) Warn(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Warnf(format, args...)
}

func (z *ZapLogger) Debug(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Debugf(format, args...)
}

func (z *ZapLogger) Critical(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Errorf("[CRITICAL] "+format, args...)
}

func (z *ZapLogger) Emergency(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Errorf("[EMERGENCY] "+format, args...)
}

func (z *ZapLogger) Notice(ctx context.Context, format string, args ...interface{}) {
	z.with(ctx).Infof("[NOTICE] "+format, args...)
}
