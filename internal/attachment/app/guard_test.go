package app

import (
	"context"
	"errors"
	"testing"

	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"go.uber.org/multierr"
)

const folder = "/uploads/images/page/"

func pageRecord(fields map[string]any) *domain.Record {
	rec := domain.NewRecord("page", "0123456789")
	rec.Fields = fields
	return rec
}

func TestValidate_文件都存在时通过(t *testing.T) {
	store := newMemStore(folder + "a_1.jpg")
	rec := pageRecord(map[string]any{
		"asideImage": map[string]any{"filename": "a_1.jpg"},
	})

	if err := Validate(context.Background(), rec, []string{"asideImage"}, folder, StorageExists(store)); err != nil {
		t.Fatalf("期望通过，got=%v", err)
	}
	if len(store.existsCalls) != 1 || store.existsCalls[0] != folder+"a_1.jpg" {
		t.Fatalf("期望按 folder+filename 查询，got=%v", store.existsCalls)
	}
}

func TestValidate_没有附件不访问存储(t *testing.T) {
	store := newMemStore()
	rec := pageRecord(map[string]any{
		"a": map[string]any{"filename": ""},
		"b": map[string]any{"filename": "undefined"},
		"c": map[string]any{},
	})

	err := Validate(context.Background(), rec, []string{"a", "b", "c", "meta.icon"}, folder, StorageExists(store))
	if err != nil {
		t.Fatalf("期望通过，got=%v", err)
	}
	if len(store.existsCalls) != 0 {
		t.Fatalf("期望不访问存储，got=%v", store.existsCalls)
	}
}

func TestValidate_缺失文件全部返回(t *testing.T) {
	store := newMemStore(folder + "ok.jpg")
	rec := pageRecord(map[string]any{
		"asideImage": map[string]any{"filename": "gone.jpg"},
		"meta":       map[string]any{"icon": map[string]any{"filename": "ok.jpg"}},
		"cover":      map[string]any{"filename": "gone2.png"},
	})

	err := Validate(context.Background(), rec, []string{"asideImage", "meta.icon", "cover"}, folder, StorageExists(store))
	if !errors.Is(err, domain.ErrFileMissing) {
		t.Fatalf("期望 FILE_MISSING，got=%v", err)
	}
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("期望 2 个缺失错误，got=%d err=%v", len(errs), err)
	}
	if len(store.existsCalls) != 3 {
		t.Fatalf("期望每个字段都检查，got=%v", store.existsCalls)
	}

	var de *domain.Error
	if !errors.As(errs[0], &de) {
		t.Fatalf("期望 *domain.Error，got=%T", errs[0])
	}
	data := de.Data()
	if data["path"] != "asideImage" || data["filename"] != "gone.jpg" || data["folder"] != folder {
		t.Fatalf("错误数据不对 got=%v", data)
	}
}

func TestValidate_存储出错按系统错误拒绝(t *testing.T) {
	store := newMemStore()
	store.existsErr = errors.New("connection reset")
	rec := pageRecord(map[string]any{"asideImage": map[string]any{"filename": "a.jpg"}})

	err := Validate(context.Background(), rec, []string{"asideImage"}, folder, StorageExists(store))
	if !errors.Is(err, errx.ErrUnavailable) {
		t.Fatalf("期望 SERVICE_UNAVAILABLE，got=%v", err)
	}
	if errors.Is(err, domain.ErrFileMissing) {
		t.Fatalf("存储错误不应报成文件缺失")
	}
}

func TestValidate_纯字符串字段值(t *testing.T) {
	store := newMemStore()
	rec := pageRecord(map[string]any{"asideImage": "raw.jpg"})

	err := Validate(context.Background(), rec, []string{"asideImage"}, folder, StorageExists(store))
	if !errors.Is(err, domain.ErrFileMissing) {
		t.Fatalf("期望 FILE_MISSING，got=%v", err)
	}
}
