package mysql

import (
	"context"
	"errors"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IDGenerator 为新记录分配身份。
type IDGenerator interface {
	NextIDString() string
}

// RecordRepo 是 gorm 上的记录仓储，附件钩子由 RegisterCallbacks 挂在 gorm 回调链上，这里不直接调用。
type RecordRepo struct {
	db  *gorm.DB
	ids IDGenerator
}

func NewRecordRepo(db *gorm.DB, ids IDGenerator) *RecordRepo {
	return &RecordRepo{db: db, ids: ids}
}

// Migrate 建表。
func (r *RecordRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&RecordRow{}); err != nil {
		return errx.ErrUnavailable.WithData("table", tableName).WithCause(err)
	}
	return nil
}

func (r *RecordRepo) New(typeID string) (*domain.Record, error) {
	if typeID == "" {
		return nil, domain.ErrInvalidInput.WithMsg("缺少记录类型")
	}
	return domain.NewRecord(typeID, r.ids.NextIDString()), nil
}

func (r *RecordRepo) Load(ctx context.Context, typeID, id string) (*domain.Record, error) {
	var row RecordRow
	err := r.db.WithContext(ctx).Where("id = ? AND type = ?", id, typeID).First(&row).Error
	if err == nil {
		return row.Record(), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 技术错误 → 业务错误
		return nil, domain.ErrRecordNotFound.WithData("type", typeID).WithData("id", id)
	}
	return nil, errx.ErrUnavailable.WithData("type", typeID).WithData("id", id).WithCause(err)
}

// Save 是 upsert：主键已存在时更新（created_at 保持不变），否则插入。
// 附件校验失败时返回 FILE_MISSING 等领域错误，库里什么都不会写。
func (r *RecordRepo) Save(ctx context.Context, rec *domain.Record) error {
	if rec == nil || rec.ID == "" {
		return domain.ErrMissingIdentity
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "fields", "updated_at"}),
	}).Create(rowFrom(rec)).Error
	if err == nil {
		return nil
	}
	var de *errx.Error
	if errors.As(err, &de) {
		return err
	}
	return errx.ErrUnavailable.WithData("type", rec.Type).WithData("id", rec.ID).WithCause(err)
}
