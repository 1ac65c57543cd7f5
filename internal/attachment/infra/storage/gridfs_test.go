package storage

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type gridFile struct {
	id   int
	name string
	data string
}

// memBucket 是内存里的 GridFS 桶，记录调用顺序。
type memBucket struct {
	next  int
	files []gridFile
	ops   []string

	uploadErr error
	removeErr error
}

func (b *memBucket) count(ctx context.Context, name string) (int64, error) {
	var n int64
	for _, f := range b.files {
		if f.name == name {
			n++
		}
	}
	return n, nil
}

func (b *memBucket) revisions(ctx context.Context, name string) ([]any, error) {
	var ids []any
	for _, f := range b.files {
		if f.name == name {
			ids = append(ids, f.id)
		}
	}
	return ids, nil
}

func (b *memBucket) upload(ctx context.Context, name string, r io.Reader) error {
	b.ops = append(b.ops, "upload "+name)
	if b.uploadErr != nil {
		return b.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.next++
	b.files = append(b.files, gridFile{id: b.next, name: name, data: string(data)})
	return nil
}

func (b *memBucket) remove(ctx context.Context, id any) error {
	b.ops = append(b.ops, "remove")
	if b.removeErr != nil {
		return b.removeErr
	}
	for i, f := range b.files {
		if f.id == id {
			b.files = append(b.files[:i], b.files[i+1:]...)
			return nil
		}
	}
	return mongo.ErrFileNotFound
}

func (b *memBucket) open(ctx context.Context, name string) (*mongo.GridFSDownloadStream, error) {
	return nil, mongo.ErrFileNotFound
}

func (b *memBucket) contents(name string) []string {
	var out []string
	for _, f := range b.files {
		if f.name == name {
			out = append(out, f.data)
		}
	}
	return out
}

func TestGridFS_覆盖写入先上传再删旧版本(t *testing.T) {
	b := &memBucket{}
	s := &GridFS{files: b}
	ctx := context.Background()

	if err := s.Put(ctx, "/uploads/images/page/a.jpg", strings.NewReader("v1")); err != nil {
		t.Fatalf("put err=%v", err)
	}
	if err := s.Put(ctx, "/uploads/images/page/a.jpg", strings.NewReader("v2")); err != nil {
		t.Fatalf("覆盖 put err=%v", err)
	}

	if got := b.contents("/uploads/images/page/a.jpg"); !reflect.DeepEqual(got, []string{"v2"}) {
		t.Fatalf("期望只剩新版本，got=%v", got)
	}
	want := []string{"upload /uploads/images/page/a.jpg", "upload /uploads/images/page/a.jpg", "remove"}
	if !reflect.DeepEqual(b.ops, want) {
		t.Fatalf("期望先上传再删除，got=%v", b.ops)
	}
}

func TestGridFS_上传失败不删旧版本(t *testing.T) {
	b := &memBucket{files: []gridFile{{id: 1, name: "/a.jpg", data: "v1"}}, next: 1}
	s := &GridFS{files: b}
	b.uploadErr = errors.New("boom")

	if err := s.Put(context.Background(), "/a.jpg", strings.NewReader("v2")); err == nil {
		t.Fatalf("期望上传错误")
	}
	if got := b.contents("/a.jpg"); !reflect.DeepEqual(got, []string{"v1"}) {
		t.Fatalf("旧版本应保留，got=%v", got)
	}
}

func TestGridFS_存在与删除所有版本(t *testing.T) {
	b := &memBucket{files: []gridFile{
		{id: 1, name: "/a.jpg", data: "v1"},
		{id: 2, name: "/a.jpg", data: "v2"},
		{id: 3, name: "/b.jpg", data: "x"},
	}, next: 3}
	s := &GridFS{files: b}
	ctx := context.Background()

	if ok, err := s.Exists(ctx, "/a.jpg"); err != nil || !ok {
		t.Fatalf("期望存在 ok=%v err=%v", ok, err)
	}
	if err := s.Delete(ctx, "/a.jpg"); err != nil {
		t.Fatalf("delete err=%v", err)
	}
	if ok, _ := s.Exists(ctx, "/a.jpg"); ok {
		t.Fatalf("所有版本都应删除")
	}
	if ok, _ := s.Exists(ctx, "/b.jpg"); !ok {
		t.Fatalf("其它文件不应受影响")
	}
	if err := s.Delete(ctx, "/a.jpg"); err != nil {
		t.Fatalf("重复删除不应报错 err=%v", err)
	}
}

func TestGridFS_删除时文件已不在不算错(t *testing.T) {
	b := &memBucket{files: []gridFile{{id: 1, name: "/a.jpg"}}, next: 1}
	s := &GridFS{files: b}
	b.removeErr = mongo.ErrFileNotFound

	if err := s.Delete(context.Background(), "/a.jpg"); err != nil {
		t.Fatalf("期望忽略 ErrFileNotFound，got=%v", err)
	}

	b.removeErr = errors.New("boom")
	if err := s.Delete(context.Background(), "/a.jpg"); err == nil {
		t.Fatalf("其它删除错误应返回")
	}
}
