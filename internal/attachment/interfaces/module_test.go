package interfaces

import (
	"errors"
	"reflect"
	"testing"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/modules/kit/errx"

	"github.com/spf13/afero"
)

func TestRegisterSchemas_按文件格式加载(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/schemas/page.yml", []byte(`
- meta:
    title: {kind: Text}
    icon: {kind: File, label: Icon}
- asideImage: File
`), 0o644)
	_ = afero.WriteFile(fs, "/schemas/model.json", []byte(`{"cover": {"kind": "File"}, "name": {"kind": "Text"}}`), 0o644)

	reg := app.NewRegistry(app.Options{UploadedFilesStorage: "/uploads"}, nil, nil)
	err := RegisterSchemas(fs, reg, map[string]string{
		"page":  "/schemas/page.yml",
		"model": "/schemas/model.json",
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	page, _ := reg.Lookup("page")
	if want := []string{"meta.icon", "asideImage"}; !reflect.DeepEqual(page.FileFields(), want) {
		t.Fatalf("page fields got=%v want=%v", page.FileFields(), want)
	}
	model, _ := reg.Lookup("model")
	if want := []string{"cover"}; !reflect.DeepEqual(model.FileFields(), want) {
		t.Fatalf("model fields got=%v want=%v", model.FileFields(), want)
	}
}

func TestLoadSchemaFile_错误(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := LoadSchemaFile(fs, "/nope.yml"); !errors.Is(err, errx.ErrMissingConfiguration) {
		t.Fatalf("期望 MISSING_CONFIGURATION，got=%v", err)
	}
	_ = afero.WriteFile(fs, "/bad.toml", []byte("x"), 0o644)
	if _, err := LoadSchemaFile(fs, "/bad.toml"); !errors.Is(err, errx.ErrInvalidInput) {
		t.Fatalf("期望 INVALID_INPUT，got=%v", err)
	}
}
