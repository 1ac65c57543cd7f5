package mongodb

import (
	"context"
	"errors"
	"time"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultRecordCollectionName = "attachment_records"

const (
	OpLoadRecord = "repo.record.Load"
	OpSaveRecord = "repo.record.Save"
)

type IDGenerator interface {
	NextIDString() string
}

type recordDoc struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Fields    bson.M    `bson:"fields"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// recordCollection 是仓储用到的集合能力，没找到时返回 mongo.ErrNoDocuments。
type recordCollection interface {
	find(ctx context.Context, typeID, id string) (recordDoc, error)
	replace(ctx context.Context, doc recordDoc) error
}

// RecordRepo 把记录存成 mongo 文档。mongo 没有可挂载的回调链，钩子在 Load/Save 里显式调用。
type RecordRepo struct {
	coll recordCollection
	reg  *app.Registry
	ids  IDGenerator
}

func NewRecordRepo(db *mongo.Database, reg *app.Registry, ids IDGenerator) *RecordRepo {
	if db == nil {
		return &RecordRepo{reg: reg, ids: ids}
	}
	return &RecordRepo{coll: mongoCollection{c: db.Collection(defaultRecordCollectionName)}, reg: reg, ids: ids}
}

func (r *RecordRepo) New(typeID string) (*domain.Record, error) {
	if typeID == "" {
		return nil, domain.ErrInvalidInput.WithMsg("缺少记录类型")
	}
	return domain.NewRecord(typeID, r.ids.NextIDString()), nil
}

func (r *RecordRepo) Load(ctx context.Context, typeID, id string) (*domain.Record, error) {
	if r.coll == nil {
		return nil, errx.ErrUnavailable.WithData("op", OpLoadRecord)
	}
	doc, err := r.coll.find(ctx, typeID, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecordNotFound.WithData("type", typeID).WithData("id", id)
		}
		return nil, errx.ErrUnavailable.WithDataMap(map[string]any{"op": OpLoadRecord, "type": typeID, "id": id}).WithCause(err)
	}

	rec := &domain.Record{ID: doc.ID, Type: doc.Type, Fields: plainMap(doc.Fields)}
	if l, ok := r.reg.Lookup(typeID); ok {
		l.OnLoad(ctx, rec)
	}
	return rec, nil
}

// Save 校验 → upsert → 写入确认后清理旧文件。校验失败时不写库。
func (r *RecordRepo) Save(ctx context.Context, rec *domain.Record) error {
	if rec == nil || rec.ID == "" {
		return domain.ErrMissingIdentity
	}
	if r.coll == nil {
		return errx.ErrUnavailable.WithData("op", OpSaveRecord)
	}
	l, managed := r.reg.Lookup(rec.Type)
	if managed {
		if err := l.BeforeSave(ctx, rec); err != nil {
			return err
		}
	}

	doc := recordDoc{ID: rec.ID, Type: rec.Type, Fields: bson.M(rec.Fields), UpdatedAt: time.Now()}
	if err := r.coll.replace(ctx, doc); err != nil {
		return errx.ErrUnavailable.WithDataMap(map[string]any{"op": OpSaveRecord, "type": rec.Type, "id": rec.ID}).WithCause(err)
	}

	if managed {
		l.AfterSave(ctx, rec)
	}
	return nil
}

type mongoCollection struct {
	c *mongo.Collection
}

func (m mongoCollection) find(ctx context.Context, typeID, id string) (recordDoc, error) {
	var doc recordDoc
	err := m.c.FindOne(ctx, bson.M{"_id": id, "type": typeID}).Decode(&doc)
	return doc, err
}

func (m mongoCollection) replace(ctx context.Context, doc recordDoc) error {
	_, err := m.c.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

// plainMap 把 bson 解出来的嵌套文档转成 map[string]any，domain.Set 才能往里写。
func plainMap(m bson.M) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plainValue(v)
	}
	return out
}

func plainValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(bson.M(t))
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plainValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plainValue(e)
		}
		return out
	case []any:
		return plainValue(bson.A(t))
	default:
		return v
	}
}
