package mysql

import (
	"reflect"

	"attachkeeper/internal/attachment/app"

	"gorm.io/gorm"
)

const (
	callbackOnLoad     = "attachment:on_load"
	callbackBeforeSave = "attachment:before_save"
	callbackAfterSave  = "attachment:after_save"
)

// RegisterCallbacks 把附件生命周期挂到 gorm 的回调链上：
// - 查询之后 → OnLoad
// - 开启事务之前 → BeforeSave，返回错误时写库被跳过
// - 提交之后 → AfterSave，只有写库成功才执行
func RegisterCallbacks(db *gorm.DB, reg *app.Registry) error {
	cb := db.Callback()
	if err := cb.Query().After("gorm:query").Register(callbackOnLoad, onLoad(reg)); err != nil {
		return err
	}
	if err := cb.Create().Before("gorm:begin_transaction").Register(callbackBeforeSave, beforeSave(reg)); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:begin_transaction").Register(callbackBeforeSave, beforeSave(reg)); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:commit_or_rollback_transaction").Register(callbackAfterSave, afterSave(reg)); err != nil {
		return err
	}
	return cb.Update().After("gorm:commit_or_rollback_transaction").Register(callbackAfterSave, afterSave(reg))
}

func onLoad(reg *app.Registry) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil {
			return
		}
		for _, row := range rowsOf(db) {
			if l, ok := reg.Lookup(row.Type); ok {
				l.OnLoad(db.Statement.Context, row.Record())
			}
		}
	}
}

func beforeSave(reg *app.Registry) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil {
			return
		}
		for _, row := range rowsOf(db) {
			l, ok := reg.Lookup(row.Type)
			if !ok {
				continue
			}
			rec := row.Record()
			rec.Fields = row.Fields
			if err := l.BeforeSave(db.Statement.Context, rec); err != nil {
				_ = db.AddError(err)
				return
			}
		}
	}
}

func afterSave(reg *app.Registry) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.RowsAffected == 0 {
			return
		}
		for _, row := range rowsOf(db) {
			if l, ok := reg.Lookup(row.Type); ok {
				l.AfterSave(db.Statement.Context, row.Record())
			}
		}
	}
}

// rowsOf 取出本次语句涉及的 RecordRow，其它表的语句返回 nil。
func rowsOf(db *gorm.DB) []*RecordRow {
	if db.Statement == nil || db.Statement.Schema == nil || db.Statement.Schema.Table != tableName {
		return nil
	}
	rv := db.Statement.ReflectValue
	switch rv.Kind() {
	case reflect.Struct:
		if rv.CanAddr() {
			if row, ok := rv.Addr().Interface().(*RecordRow); ok {
				return []*RecordRow{row}
			}
		}
	case reflect.Slice, reflect.Array:
		out := make([]*RecordRow, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e := rv.Index(i)
			if e.Kind() == reflect.Ptr {
				if row, ok := e.Interface().(*RecordRow); ok && row != nil {
					out = append(out, row)
				}
				continue
			}
			if e.CanAddr() {
				if row, ok := e.Addr().Interface().(*RecordRow); ok {
					out = append(out, row)
				}
			}
		}
		return out
	}
	return nil
}
