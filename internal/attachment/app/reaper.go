package app

import (
	"context"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"
	"attachkeeper/modules/kit/logx"

	"go.uber.org/zap"
)

const actionReap = "attachment.reap"

// Reap 在保存提交之后判断旧文件是否成了孤儿，是则删除。返回是否删除了文件。
//
// 约定：
// - prev 为空或文件名为空：什么都不做，不访问存储
// - next 与 prev 文件名相同：文件仍被引用，不访问存储
// - next 为 nil 视为字段被清空，旧文件同样是孤儿
// - 存储报错只记日志不返回，清理失败不能被当成保存失败
func Reap(ctx context.Context, next *domain.Attachment, folder string, prev *domain.Attachment, store Remover, log Logger) bool {
	if log == nil {
		log = logx.Nop()
	}
	if prev == nil || prev.Filename == "" {
		log.WithContext(ctx).Debug("reap skipped, no previous file", zap.String("folder", folder))
		return false
	}
	nextName := ""
	if next != nil {
		nextName = next.Filename
	}
	if nextName == prev.Filename {
		return false
	}

	dir, err := domain.NormalizePath(folder)
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(actionReap, err))
		return false
	}
	fullPath := dir + prev.Filename

	found, err := store.Exists(ctx, fullPath)
	if err != nil {
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(actionReap,
			errx.ErrUnavailable.WithData("path", fullPath).WithCause(err)))
		return false
	}
	if !found {
		return false
	}
	if err = store.Delete(ctx, fullPath); err != nil {
		logx.ReportSysErrorWithLoggerContext(ctx, log, logx.NewSysLog(actionReap,
			errx.ErrUnavailable.WithData("path", fullPath).WithCause(err)))
		return false
	}

	log.WithContext(ctx).Info("orphan file deleted",
		zap.String("path", fullPath),
		zap.String("replaced_by", nextName),
	)
	return true
}
