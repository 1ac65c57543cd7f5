package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"attachkeeper/internal/shared/transport"
	"attachkeeper/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyCaptureWriter) Write(data []byte) (int, error) {
	_, _ = w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	_, _ = w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// AccessLog 统一写访问日志，并尽量从响应体中的 `code` 字段提取业务码。
// 静态文件这类非 JSON 响应按 HTTP 状态判断。
func AccessLog(log logx.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		action := c.Request.Method + " " + route

		ctx := transport.NewContextWithParent(c.Request.Context(), action)
		c.Request = c.Request.WithContext(ctx)

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = bw

		c.Next()

		if bizCode, ok := parseBizCode(bw.Header().Get("Content-Type"), bw.body.Bytes()); ok {
			transport.SetBizCode(ctx, transport.BizCode(bizCode))
		} else if c.Writer.Status() >= http.StatusBadRequest {
			transport.SetBizCode(ctx, transport.BizCode(c.Writer.Status()))
		} else {
			transport.SetBizCode(ctx, transport.OK)
		}

		transport.WriteAccessLog(ctx, log)
	}
}

func parseBizCode(contentType string, body []byte) (int, bool) {
	if len(body) == 0 || !strings.HasPrefix(contentType, gin.MIMEJSON) {
		return 0, false
	}

	// {"code":422, ...}
	var payload struct {
		Code *int `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, false
	}
	if payload.Code == nil {
		return 0, false
	}
	return *payload.Code, true
}
