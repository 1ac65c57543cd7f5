package handler

import (
	"context"
	"errors"
	nethttp "net/http"

	"attachkeeper/internal/attachment/interfaces/dto"
	"attachkeeper/internal/shared/transport"
	"attachkeeper/modules/kit/errx"
	"attachkeeper/modules/kit/logx"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// toResp 把错误转成 HTTP 状态和响应体，同时写业务/系统错误日志。
// FILE_MISSING 可能是多个字段合并的错误，data 里列出每个缺失的文件。
func toResp(ctx context.Context, log logx.Logger, action string, err error) (int, dto.Resp) {
	code := transport.BizCodeOf(err)
	transport.Fail(ctx, err)

	errs := multierr.Errors(err)
	details := make([]map[string]any, 0, len(errs))
	msg := ""
	for _, e := range errs {
		var xe *errx.Error
		if !errors.As(e, &xe) {
			continue
		}
		if xe.IsBiz() {
			logx.ReportBizWithLoggerContext(ctx, log, logx.NewBizLog(action, xe.CodeText(), xe.Msg()),
				zap.Any("error_data", xe.Data()))
		}
		if msg == "" {
			msg = xe.Msg()
		}
		if d := xe.Data(); len(d) != 0 && xe.IsBiz() {
			details = append(details, d)
		}
	}
	if code >= transport.SystemError {
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(action, err))
		// 系统错误不把内部信息带给调用方
		msg = nethttp.StatusText(int(code))
		details = nil
	}
	if msg == "" {
		msg = nethttp.StatusText(httpStatus(code))
	}

	resp := dto.Resp{Code: int(code), Msg: msg}
	if len(details) != 0 {
		resp.Data = details
	}
	return httpStatus(code), resp
}

func httpStatus(code transport.BizCode) int {
	switch code {
	case transport.OK:
		return nethttp.StatusOK
	case transport.InvalidInput:
		return nethttp.StatusBadRequest
	case transport.RecordNotFound:
		return nethttp.StatusNotFound
	case transport.FileMissing:
		return nethttp.StatusUnprocessableEntity
	case transport.Unavailable:
		return nethttp.StatusServiceUnavailable
	default:
		return nethttp.StatusInternalServerError
	}
}
