package domain

import (
	"errors"
	"regexp"
	"strings"
)

var repeatedSlashes = regexp.MustCompile(`/{2,}`)

// NormalizePath 保证开头和结尾各有一个 /，并把连续的 / 合并成一个。幂等。
func NormalizePath(p string) (string, error) {
	if p == "" {
		return "", ErrInvalidInput.WithMsg("缺少路径参数")
	}
	return repeatedSlashes.ReplaceAllString("/"+p+"/", "/"), nil
}

// CompletePathToFile 拼出文件的完整路径；没有文件名时返回空串。
func CompletePathToFile(filename, pathToStorage string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if pathToStorage == "" {
		return "", ErrInvalidInput.WithMsg("缺少存储路径").WithData("filename", filename)
	}
	dir, err := NormalizePath(pathToStorage)
	if err != nil {
		return "", err
	}
	return dir + filename, nil
}

// PathDelimiter 判断路径使用的分隔符。
func PathDelimiter(p string) (string, error) {
	hasSlash := strings.Contains(p, "/")
	hasBackslash := strings.Contains(p, "\\")
	switch {
	case hasSlash && hasBackslash:
		return "", ErrAmbiguousPath.WithData("path", p)
	case hasSlash:
		return "/", nil
	case hasBackslash:
		return "\\", nil
	default:
		return "", ErrNoDelimiter.WithData("path", p)
	}
}

// FolderName 计算一种记录类型的存储目录：<storageRoot>/<typeID>/，注册时算一次。
func FolderName(storageRoot, typeID string) (string, error) {
	if typeID == "" {
		return "", ErrInvalidInput.WithMsg("缺少记录类型")
	}
	if storageRoot == "" {
		return "", ErrMissingConfiguration.WithData("key", "uploaded_files_storage")
	}

	delim, err := PathDelimiter(storageRoot)
	switch {
	case err == nil && delim == "\\":
		storageRoot = strings.ReplaceAll(storageRoot, "\\", "/")
	case err != nil && !errors.Is(err, ErrNoDelimiter):
		return "", err
	}

	typeDir, err := NormalizePath(typeID)
	if err != nil {
		return "", err
	}
	return NormalizePath(storageRoot + typeDir)
}

