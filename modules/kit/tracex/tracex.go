package tracex

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type traceIDKey struct{}
type cycleIDKey struct{}
type recordIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, traceIDKey{})
}

// WithCycleID 标记一次保存周期（load → before save → after save）。
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, cycleIDKey{}, cycleID)
}

func CycleIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, cycleIDKey{})
}

func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, recordIDKey{}, recordID)
}

func RecordIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, recordIDKey{})
}

// NewTraceID 生成 32 位 hex 的随机 id（去掉 uuid 的连字符）。
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v := ctx.Value(key)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
