package domain

import "attachkeeper/modules/kit/errx"

// Code 表示附件领域的错误码。
//
// 约定：
// - 结构性错误（参数、身份、配置、路径分隔符）是程序/配置问题，直接中止当前操作
// - FILE_MISSING 是唯一预期内、面向用户的错误，必须作为保存拒绝向上传递
type Code = errx.Code

const (
	CodeInvalidInput         Code = errx.CodeInvalidInput
	CodeMissingConfiguration Code = errx.CodeMissingConfiguration
	CodeMissingIdentity      Code = "MISSING_IDENTITY"
	CodeFileMissing          Code = "FILE_MISSING"
	CodeAmbiguousPath        Code = "AMBIGUOUS_PATH"
	CodeNoDelimiter          Code = "NO_DELIMITER"
	CodeRecordNotFound       Code = "RECORD_NOT_FOUND"
)

type Error = errx.Error

// 哨兵错误：只用于 errors.Is 比较，通过 WithData/WithMsg 派生新对象。
var (
	ErrInvalidInput         = errx.ErrInvalidInput
	ErrMissingConfiguration = errx.ErrMissingConfiguration
	ErrMissingIdentity      = errx.NewSys(CodeMissingIdentity, "记录还没有 id，不能为其生成文件名")
	ErrFileMissing          = errx.NewBiz(CodeFileMissing, "文件不存在")
	ErrAmbiguousPath        = errx.NewSys(CodeAmbiguousPath, "路径同时包含 / 和 \\")
	ErrNoDelimiter          = errx.NewSys(CodeNoDelimiter, "路径不包含分隔符")
	ErrRecordNotFound       = errx.NewBiz(CodeRecordNotFound, "记录不存在")
)

// NewFileMissing 构造文件缺失错误，msg 里同时给出文件名和期望所在目录。
func NewFileMissing(path, filename, folder string) *Error {
	return ErrFileMissing.
		WithMsgf("文件 '%s' 不在 '%s' 目录中，请重新上传", filename, folder).
		WithDataMap(map[string]any{
			"path":     path,
			"filename": filename,
			"folder":   folder,
		})
}
