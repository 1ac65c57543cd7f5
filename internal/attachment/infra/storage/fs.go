package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"

	"attachkeeper/modules/kit/errx"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FS 是基于 afero 的文件系统存储，fullPath 相对于 Fs 的根（生产用 BasePathFs 限定在 root 下）。
type FS struct {
	fs afero.Fs
}

func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOsFS 把所有路径限定在 root 目录下，root 不存在时创建。
func NewOsFS(root string) (*FS, error) {
	if root == "" {
		return nil, errx.ErrMissingConfiguration.WithData("key", "storage.root")
	}
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(root, dirPerm); err != nil {
		return nil, errx.ErrUnavailable.WithData("root", root).WithCause(err)
	}
	return NewFS(afero.NewBasePathFs(osFs, root)), nil
}

// Afero 暴露底层 Fs，静态文件服务用它做 http.FileSystem。
func (s *FS) Afero() afero.Fs {
	return s.fs
}

func (s *FS) Exists(ctx context.Context, fullPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := s.fs.Stat(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (s *FS) Delete(ctx context.Context, fullPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.fs.Remove(fullPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Put 覆盖写入 fullPath，父目录不存在时创建。
func (s *FS) Put(ctx context.Context, fullPath string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(fullPath), dirPerm); err != nil {
		return err
	}
	f, err := s.fs.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
