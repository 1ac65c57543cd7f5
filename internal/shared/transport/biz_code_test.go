package transport

import (
	"context"
	"errors"
	"testing"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/internal/attachment/domain"
	"attachkeeper/modules/kit/errx"

	"go.uber.org/multierr"
)

func TestBizCodeOf_单个错误(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want BizCode
	}{
		{"nil", nil, OK},
		{"文件缺失", domain.NewFileMissing("a", "x.jpg", "/f/"), FileMissing},
		{"参数错误", domain.ErrInvalidInput, InvalidInput},
		{"缺少身份", domain.ErrMissingIdentity, InvalidInput},
		{"记录不存在", domain.ErrRecordNotFound, RecordNotFound},
		{"依赖不可用", errx.ErrUnavailable, Unavailable},
		{"超时", errx.ErrTimeout, Unavailable},
		{"未知错误", errors.New("boom"), SystemError},
	}
	for _, c := range cases {
		if got := BizCodeOf(c.err); got != c.want {
			t.Fatalf("%s: 期望 %d got=%d", c.name, c.want, got)
		}
	}
}

func TestBizCodeOf_合并错误与顺序无关(t *testing.T) {
	missing := domain.NewFileMissing("b", "x.jpg", "/f/")
	unavailable := errx.ErrUnavailable.WithCause(errors.New("io"))

	if got := BizCodeOf(multierr.Combine(unavailable, missing)); got != Unavailable {
		t.Fatalf("期望 503 got=%d", got)
	}
	if got := BizCodeOf(multierr.Combine(missing, unavailable)); got != Unavailable {
		t.Fatalf("期望 503 got=%d", got)
	}
	if got := BizCodeOf(multierr.Combine(domain.ErrInvalidInput, missing)); got != FileMissing {
		t.Fatalf("期望 422 got=%d", got)
	}
}

func TestBizCodeOf_存在检查出错与缺失混合(t *testing.T) {
	rec := domain.NewRecord("page", "1")
	rec.Fields["a"] = map[string]any{"filename": "a.jpg"}
	rec.Fields["b"] = map[string]any{"filename": "b.jpg"}
	exists := func(ctx context.Context, folder, filename string) (bool, error) {
		if filename == "a.jpg" {
			return false, errors.New("storage down")
		}
		return false, nil
	}

	for _, paths := range [][]string{{"a", "b"}, {"b", "a"}} {
		err := app.Validate(context.Background(), rec, paths, "/f/", exists)
		if got := BizCodeOf(err); got != Unavailable {
			t.Fatalf("字段顺序 %v: 期望 503 got=%d", paths, got)
		}
	}
}
