package app

import (
	"context"
	"io"

	"attachkeeper/modules/kit/logx"
)

type Logger = logx.Logger

// Remover 是清理旧文件需要的最小存储能力。
type Remover interface {
	Exists(ctx context.Context, fullPath string) (bool, error)
	Delete(ctx context.Context, fullPath string) error
}

// Storage 是宿主提供的存储适配器，同名文件按覆盖处理。
type Storage interface {
	Remover
	Put(ctx context.Context, fullPath string, r io.Reader) error
}

// ExistsFunc 判断 folder 目录下是否存在 filename。
type ExistsFunc func(ctx context.Context, folder, filename string) (bool, error)

// StorageExists 把 Storage.Exists 适配成 ExistsFunc。
func StorageExists(s Remover) ExistsFunc {
	return func(ctx context.Context, folder, filename string) (bool, error) {
		return s.Exists(ctx, folder+filename)
	}
}
