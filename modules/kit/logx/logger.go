package logx

import (
	"context"

	"go.uber.org/zap"
)

// Logger 是附件生命周期依赖的最小日志接口。
//
// 约束：
// - 只承载结构化字段 + ctx 透传（trace/cycle/record id）
// - app 层只依赖这个接口，不直接依赖 zap.Logger
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	WithContext(ctx context.Context) Logger
}
