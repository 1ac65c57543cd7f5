package logx

import (
	"context"

	"attachkeeper/modules/kit/tracex"

	"go.uber.org/zap"
)

// ZapLogger 是 zap 的适配器，实现 logx.Logger。
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		return &ZapLogger{logger: zap.NewNop()}
	}
	return &ZapLogger{logger: l}
}

// Nop 返回丢弃所有输出的 Logger，用于测试或未注入日志的场景。
func Nop() Logger {
	return NewZapLogger(nil)
}

// WithContext 把 ctx 上的 trace/cycle/record id 挂到字段上，同一保存周期的日志可以串起来。
func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if z == nil {
		return NewZapLogger(nil)
	}
	l := z.logger
	if tid, ok := tracex.TraceIDFrom(ctx); ok {
		l = l.With(zap.String("trace_id", tid))
	}
	if cid, ok := tracex.CycleIDFrom(ctx); ok {
		l = l.With(zap.String("cycle_id", cid))
	}
	if rid, ok := tracex.RecordIDFrom(ctx); ok {
		l = l.With(zap.String("record_id", rid))
	}
	return &ZapLogger{logger: l}
}

func (z *ZapLogger) Info(msg string, fields ...zap.Field) {
	z.logger.Info(msg, fields...)
}

func (z *ZapLogger) Error(msg string, fields ...zap.Field) {
	z.logger.Error(msg, fields...)
}

func (z *ZapLogger) Debug(msg string, fields ...zap.Field) {
	z.logger.Debug(msg, fields...)
}

func (z *ZapLogger) Warn(msg string, fields ...zap.Field) {
	z.logger.Warn(msg, fields...)
}
