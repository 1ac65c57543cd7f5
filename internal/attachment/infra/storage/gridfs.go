package storage

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultBucket = "attachments"

// bucket 是 GridFS 适配器用到的桶能力，按文件名操作，一个文件名可以有多个版本。
type bucket interface {
	count(ctx context.Context, name string) (int64, error)
	revisions(ctx context.Context, name string) ([]any, error)
	upload(ctx context.Context, name string, r io.Reader) error
	remove(ctx context.Context, id any) error
	open(ctx context.Context, name string) (*mongo.GridFSDownloadStream, error)
}

// GridFS 把文件存在 mongo GridFS 里，fullPath 直接作为 GridFS 的 filename。
//
// 约定：Put 是覆盖语义，先上传新版本再删掉同名旧版本，读的一方在任何时刻都至少能看到一个版本。
type GridFS struct {
	files bucket
}

func NewGridFS(db *mongo.Database, bucketName string) *GridFS {
	if bucketName == "" {
		bucketName = defaultBucket
	}
	return &GridFS{files: mongoBucket{b: db.GridFSBucket(options.GridFSBucket().SetName(bucketName))}}
}

func (s *GridFS) Exists(ctx context.Context, fullPath string) (bool, error) {
	n, err := s.files.count(ctx, fullPath)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GridFS) Delete(ctx context.Context, fullPath string) error {
	ids, err := s.files.revisions(ctx, fullPath)
	if err != nil {
		return err
	}
	return s.removeAll(ctx, ids)
}

func (s *GridFS) Put(ctx context.Context, fullPath string, r io.Reader) error {
	old, err := s.files.revisions(ctx, fullPath)
	if err != nil {
		return err
	}
	if err = s.files.upload(ctx, fullPath, r); err != nil {
		return err
	}
	return s.removeAll(ctx, old)
}

// Open 打开 fullPath 的最新版本，用于把 GridFS 里的文件对外提供下载。
func (s *GridFS) Open(ctx context.Context, fullPath string) (*mongo.GridFSDownloadStream, error) {
	return s.files.open(ctx, fullPath)
}

func (s *GridFS) removeAll(ctx context.Context, ids []any) error {
	for _, id := range ids {
		// 并发删除时已经不在了，不算错
		if err := s.files.remove(ctx, id); err != nil && !errors.Is(err, mongo.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

type mongoBucket struct {
	b *mongo.GridFSBucket
}

func (m mongoBucket) count(ctx context.Context, name string) (int64, error) {
	return m.b.GetFilesCollection().CountDocuments(ctx, bson.D{{Key: "filename", Value: name}}, options.Count().SetLimit(1))
}

func (m mongoBucket) revisions(ctx context.Context, name string) ([]any, error) {
	cur, err := m.b.Find(ctx, bson.D{{Key: "filename", Value: name}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []any
	for cur.Next(ctx) {
		var doc struct {
			ID bson.ObjectID `bson:"_id"`
		}
		if err = cur.Decode(&doc); err != nil {
			return nil, err
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}

func (m mongoBucket) upload(ctx context.Context, name string, r io.Reader) error {
	_, err := m.b.UploadFromStream(ctx, name, r)
	return err
}

func (m mongoBucket) remove(ctx context.Context, id any) error {
	return m.b.Delete(ctx, id)
}

func (m mongoBucket) open(ctx context.Context, name string) (*mongo.GridFSDownloadStream, error) {
	return m.b.OpenDownloadStreamByName(ctx, name)
}
