package http

import (
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"attachkeeper/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewHttpServer_Healthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	s := NewHttpServer(":0", gin.New(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(w, req)

	if w.Code != nethttp.StatusOK {
		t.Fatalf("unexpected status code: got=%d want=%d", w.Code, nethttp.StatusOK)
	}
}

func TestAccessLog_按响应体code分级(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	s := NewHttpServer(":0", gin.New(), logx.NewZapLogger(zap.New(core)))
	s.Group().GET("/reject", func(c *gin.Context) {
		c.JSON(nethttp.StatusUnprocessableEntity, gin.H{"code": 422, "msg": "文件缺失"})
	})
	s.Group().GET("/boom", func(c *gin.Context) {
		c.String(nethttp.StatusInternalServerError, "boom")
	})

	for _, path := range []string{"/healthz", "/reject", "/boom"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, path, nil).WithContext(context.Background()))
	}

	entries := logs.FilterMessage("access").All()
	if len(entries) != 3 {
		t.Fatalf("期望 3 条 access 日志，got=%d", len(entries))
	}
	want := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != want[i] {
			t.Fatalf("第 %d 条级别不对 got=%v want=%v", i, e.Level, want[i])
		}
		if _, ok := e.ContextMap()["trace_id"]; !ok {
			t.Fatalf("access 日志应带 trace_id got=%v", e.ContextMap())
		}
	}
}
