package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger 基于 zap 的 Logger 实现
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger 按级别创建 zap Logger；production 为 true 时输出 JSON
func NewZapLogger(level Level, production bool) (*ZapLogger, error) {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: l}, nil
}

// NewZapLoggerFrom 包装已有的 *zap.Logger
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{logger: l}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.logger.Debug(msg, z.convert(ctx, fields)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.logger.Info(msg, z.convert(ctx, fields)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.logger.Warn(msg, z.convert(ctx, fields)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.logger.Error(msg, z.convert(ctx, fields)...)
}

func (z *ZapLogger) WithFields(fields ...Field) Logger {
	return &ZapLogger{logger: z.logger.With(toZapFields(fields)...)}
}

// Sync 刷新缓冲
func (z *ZapLogger) Sync() error { return z.logger.Sync() }

// Zap 返回底层 *zap.Logger
func (z *ZapLogger) Zap() *zap.Logger { return z.logger }

func (z *ZapLogger) convert(ctx context.Context, fields []Field) []zap.Field {
	ctxFields := ContextFields(ctx)
	if len(ctxFields) == 0 {
		return toZapFields(fields)
	}
	all := make([]Field, 0, len(ctxFields)+len(fields))
	all = append(all, ctxFields...)
	all = append(all, fields...)
	return toZapFields(all)
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			out = append(out, zap.NamedError(f.Key, err))
			continue
		}
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func defaultLogger() Logger {
	l, err := NewZapLogger(InfoLevel, false)
	if err != nil {
		return NewNoopLogger()
	}
	return l
}
