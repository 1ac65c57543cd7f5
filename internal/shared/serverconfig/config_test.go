package serverconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"attachkeeper/modules/kit/errx"
)

func writeConf(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "conf.yml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write conf err=%v", err)
	}
	return p
}

func TestLoad_默认值和相对路径(t *testing.T) {
	p := writeConf(t, `
attachment:
  uploaded_files_storage: /uploads/images
mysql:
  slow_threshold: 500ms
schemas:
  page: schemas/page.yml
`)

	c, l, err := Load(p)
	if err != nil {
		t.Fatalf("load err=%v", err)
	}
	if l.Path() != p {
		t.Fatalf("path got=%s", l.Path())
	}
	if c.Attachment.PublicURL != "/images/" || c.Attachment.VirtualPropKey != "src" {
		t.Fatalf("默认值不对 got=%+v", c.Attachment)
	}
	if c.Storage.Driver != StorageDriverFS || c.Persistence.Driver != PersistenceMySQL {
		t.Fatalf("驱动默认值不对 got=%+v %+v", c.Storage, c.Persistence)
	}
	if c.MySQL.SlowThreshold != 500*time.Millisecond {
		t.Fatalf("duration 解析不对 got=%v", c.MySQL.SlowThreshold)
	}
	if want := filepath.Join(filepath.Dir(p), "schemas/page.yml"); c.Schemas["page"] != want {
		t.Fatalf("schema 路径 got=%s want=%s", c.Schemas["page"], want)
	}
}

func TestLoad_环境变量覆盖(t *testing.T) {
	p := writeConf(t, `
attachment:
  uploaded_files_storage: /uploads/images
`)
	t.Setenv("ATTACHD_ATTACHMENT_PUBLIC_URL", "/static/")
	t.Setenv("ATTACHD_STORAGE_DRIVER", "gridfs")

	c, _, err := Load(p)
	if err != nil {
		t.Fatalf("load err=%v", err)
	}
	if c.Attachment.PublicURL != "/static/" || c.Storage.Driver != StorageDriverGridFS {
		t.Fatalf("环境变量应覆盖 got=%+v %+v", c.Attachment, c.Storage)
	}
}

func TestLoad_缺少存储根目录(t *testing.T) {
	p := writeConf(t, "log:\n  level: debug\n")

	_, _, err := Load(p)
	if !errors.Is(err, errx.ErrMissingConfiguration) {
		t.Fatalf("期望 MISSING_CONFIGURATION，got=%v", err)
	}
}

func TestLoad_未知驱动和缺失文件(t *testing.T) {
	p := writeConf(t, `
attachment:
  uploaded_files_storage: /uploads
storage:
  driver: s3
`)
	if _, _, err := Load(p); !errors.Is(err, errx.ErrInvalidInput) {
		t.Fatalf("期望 INVALID_INPUT，got=%v", err)
	}
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); !errors.Is(err, errx.ErrMissingConfiguration) {
		t.Fatalf("期望 MISSING_CONFIGURATION，got=%v", err)
	}
}
