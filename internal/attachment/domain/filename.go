package domain

import (
	"path"
	"strings"
)

// Upload 是上传文件的元信息，OriginalName 是客户端给的原始文件名。
type Upload struct {
	OriginalName string
	MimeType     string
	Size         int64
}

// GenerateFilename 生成 <原文件名去扩展名>_<记录id><扩展名>。
// 同一条记录重复上传同名文件会得到同一个文件名，由存储层按覆盖处理。
func GenerateFilename(identity string, file *Upload) (string, error) {
	if file == nil || file.OriginalName == "" {
		return "", ErrInvalidInput.WithMsg("缺少上传文件或原始文件名")
	}
	if identity == "" {
		return "", ErrMissingIdentity.WithData("originalname", file.OriginalName)
	}

	base := path.Base(strings.ReplaceAll(file.OriginalName, "\\", "/"))
	ext := path.Ext(base)
	if ext == base {
		// ".env" 这类点文件没有扩展名
		ext = ""
	}
	return strings.TrimSuffix(base, ext) + "_" + identity + ext, nil
}
