package mysql

import (
	"time"

	"attachkeeper/internal/attachment/domain"
)

const tableName = "attachment_records"

// RecordRow 是记录在关系库里的行，字段整体以 JSON 存一列。
type RecordRow struct {
	ID        string         `gorm:"primaryKey;size:64"`
	Type      string         `gorm:"size:64;index"`
	Fields    map[string]any `gorm:"serializer:json;type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// 同一保存周期内 load 和 save 共用同一个 domain.Record，快照挂在它上面
	record *domain.Record
}

func (RecordRow) TableName() string {
	return tableName
}

func rowFrom(rec *domain.Record) *RecordRow {
	return &RecordRow{ID: rec.ID, Type: rec.Type, Fields: rec.Fields, record: rec}
}

// Record 返回行对应的 domain.Record，第一次调用时创建。
func (r *RecordRow) Record() *domain.Record {
	if r.record == nil {
		fields := r.Fields
		if fields == nil {
			fields = make(map[string]any)
		}
		r.record = &domain.Record{ID: r.ID, Type: r.Type, Fields: fields}
	}
	return r.record
}
