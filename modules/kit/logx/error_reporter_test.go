package logx

import (
	"context"
	"errors"
	"testing"

	"attachkeeper/modules/kit/errx"
	"attachkeeper/modules/kit/tracex"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBuildErrorLog_能提取语义与栈(t *testing.T) {
	cause := errors.New("unlink: permission denied")
	e := errx.NewSys("SERVICE_UNAVAILABLE", "存储不可用").
		WithData("path", "/uploads/a.jpg").
		WithCause(cause)

	meta := BuildErrorLog(e)
	if meta.Error == "" || meta.Code == "" || meta.Msg == "" {
		t.Fatalf("期望 Error/Code/Msg 非空，got=%+v", meta)
	}
	if meta.Data == nil || meta.Data["path"] != "/uploads/a.jpg" {
		t.Fatalf("期望 meta.Data 包含 path，got=%v", meta.Data)
	}
	if len(meta.CauseChain) == 0 {
		t.Fatalf("期望 meta.CauseChain 非空")
	}
	if meta.Origin == "" || meta.Stack == "" {
		t.Fatalf("期望 Origin/Stack 非空 origin=%q stack=%q", meta.Origin, meta.Stack)
	}
}

func TestReportSysError_输出error级别并带ctx字段(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ctx := tracex.WithCycleID(context.Background(), "c-9")
	ReportSysErrorWithLoggerContext(ctx, l, NewSysLog("reap", errors.New("boom")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条日志，got=%d", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("期望 ERROR，got=%v", entries[0].Level)
	}
	if entries[0].ContextMap()["cycle_id"] != "c-9" {
		t.Fatalf("期望带 cycle_id，got=%v", entries[0].ContextMap())
	}
}

func TestReportBiz_输出info级别(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLogger(zap.New(core))

	ReportBizWithLoggerContext(context.Background(), l, NewBizLog("validate", "FILE_MISSING", "icon.jpg"))

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("期望 1 条 INFO 日志，got=%v", entries)
	}
	if entries[0].Message != "validate, reason:FILE_MISSING, msg:icon.jpg" {
		t.Fatalf("日志内容不符，got=%q", entries[0].Message)
	}
}

func TestReportHelpers_nil日志器不panic(t *testing.T) {
	ReportSysErrorWithLoggerContext(context.Background(), nil, NewSysLog("x", errors.New("e")))
	ReportBizWithLoggerContext(context.Background(), nil, NewBizLog("x", "", ""))
	ReportAccessWithLoggerContext(context.Background(), nil, "x", 0)
}
