package logs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"attachkeeper/internal/shared/serverconfig"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestInit_写入JSON文件(t *testing.T) {
	file := filepath.Join(t.TempDir(), "attachd.log")
	if err := Init("attachd", serverconfig.LogConfig{FileDir: file, Level: "DEBUG"}); err != nil {
		t.Fatalf("init err=%v", err)
	}
	t.Cleanup(func() { _ = Init("attachd", serverconfig.LogConfig{Level: "info"}) })

	Info("orphan file deleted")
	_ = Sync()

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read err=%v", err)
	}
	if !strings.Contains(string(b), `"msg":"orphan file deleted"`) || !strings.Contains(string(b), `"logger":"attachd"`) {
		t.Fatalf("文件内容不对 got=%s", b)
	}
	if strings.Contains(string(b), "\x1b[") {
		t.Fatalf("文件里不应有颜色转义")
	}
}

func TestGormLogger_LogMode不修改原对象(t *testing.T) {
	g := NewGormLogger(gormlogger.Warn, time.Second)
	g2 := g.LogMode(gormlogger.Silent).(*GormLogger)
	if g.level != gormlogger.Warn || g2.level != gormlogger.Silent {
		t.Fatalf("got=%v %v", g.level, g2.level)
	}

	// 未找到记录不算错误，不应 panic
	g.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, gorm.ErrRecordNotFound)
	g.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
}
