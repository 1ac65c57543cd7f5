package errx

// 跨模块统一的系统类错误码。
//
// 约束：
// - 只放“技术/配置类”错误码，便于告警和排障
// - 附件领域的错误码（FILE_MISSING 等）由 attachment/domain 自己定义

const (
	// CodeInternal 表示不可预期错误（兜底）。
	CodeInternal Code = "INTERNAL_ERROR"
	// CodeUnavailable 表示依赖不可用（存储、数据库、网络等）。
	CodeUnavailable Code = "SERVICE_UNAVAILABLE"
	// CodeTimeout 表示依赖调用超时。
	CodeTimeout Code = "TIMEOUT"
	// CodeInvalidInput 表示调用方传参错误。
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeMissingConfiguration 表示缺少必要配置项。
	CodeMissingConfiguration Code = "MISSING_CONFIGURATION"
)

var (
	ErrInternal             = NewSys(CodeInternal, "服务器内部错误")
	ErrUnavailable          = NewSys(CodeUnavailable, "服务不可用")
	ErrTimeout              = NewSys(CodeTimeout, "请求超时")
	ErrInvalidInput         = NewSys(CodeInvalidInput, "参数错误")
	ErrMissingConfiguration = NewSys(CodeMissingConfiguration, "缺少配置")
)
