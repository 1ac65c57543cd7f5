package app

import (
	"context"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"go.uber.org/multierr"
)

// Validate 在持久化之前检查记录引用的文件是否都在存储里。
//
// 约定：
// - 没有附件（缺失/空串/"undefined"）总是合法
// - 发现缺失后继续检查剩余字段，最终把所有 FILE_MISSING 合并返回，保存被拒绝
// - exists 本身出错按系统错误处理，同样拒绝保存
func Validate(ctx context.Context, rec *domain.Record, paths []string, folder string, exists ExistsFunc) error {
	if rec == nil {
		return domain.ErrInvalidInput.WithMsg("缺少记录")
	}
	var errs error
	for _, p := range paths {
		a, ok := domain.AttachmentOf(domain.Get(rec.Fields, p))
		if !ok || a.Filename == "" || a.Filename == "undefined" {
			continue
		}
		found, err := exists(ctx, folder, a.Filename)
		if err != nil {
			errs = multierr.Append(errs, errx.ErrUnavailable.
				WithDataMap(map[string]any{"path": p, "filename": a.Filename, "folder": folder}).
				WithCause(err))
			continue
		}
		if !found {
			errs = multierr.Append(errs, domain.NewFileMissing(p, a.Filename, folder))
		}
	}
	return errs
}
