package config

import (
	"os"
	"path/filepath"

	"attachkeeper/modules/kit/errx"
)

const DefaultConfigRelPath = "configs/conf.yml"

// Resolve 确定配置文件路径：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
func Resolve(cfgName string) (string, error) {
	curDir, err := os.Getwd()
	if err != nil {
		return "", errx.ErrInternal.WithCause(err)
	}
	if cfgName != "" {
		if !filepath.IsAbs(cfgName) {
			cfgName = filepath.Join(curDir, cfgName)
		}
		if !fileExist(cfgName) {
			return "", errx.ErrMissingConfiguration.WithMsg("配置文件不存在").WithData("path", cfgName)
		}
		return cfgName, nil
	}
	return findConfigUpward(curDir)
}

func findConfigUpward(startDir string) (string, error) {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DefaultConfigRelPath)
		if fileExist(candidate) {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errx.ErrMissingConfiguration.
				WithMsg("配置文件不存在").
				WithData("searched_from", startDir).
				WithData("rel_path", DefaultConfigRelPath)
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
