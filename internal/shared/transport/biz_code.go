package transport

import (
	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"go.uber.org/multierr"
)

// BizCode 表示业务码的强类型封装，用于在日志上下文中减少误传风险。
//
// 取值和 HTTP 状态码对齐，access 日志按 0 / 1~499 / >=500 分级。
type BizCode int

const (
	OK             BizCode = 0
	InvalidInput   BizCode = 400
	RecordNotFound BizCode = 404
	FileMissing    BizCode = 422
	SystemError    BizCode = 500
	Unavailable    BizCode = 503
)

// BizCodeOf 把领域错误映射为业务码，未知错误一律视为系统错误。
// 合并错误取其中最大的业务码，系统错误总是压过业务错误，结果和合并顺序无关。
func BizCodeOf(err error) BizCode {
	if err == nil {
		return OK
	}
	code := OK
	for _, e := range multierr.Errors(err) {
		if c := bizCodeOne(e); c > code {
			code = c
		}
	}
	return code
}

func bizCodeOne(err error) BizCode {
	switch errx.CodeOf(err) {
	case domain.CodeFileMissing:
		return FileMissing
	case domain.CodeInvalidInput, domain.CodeMissingIdentity:
		return InvalidInput
	case domain.CodeRecordNotFound:
		return RecordNotFound
	case errx.CodeUnavailable, errx.CodeTimeout:
		return Unavailable
	default:
		return SystemError
	}
}
