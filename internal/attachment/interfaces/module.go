package interfaces

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"attachkeeper/internal/attachment/app"
	"attachkeeper/internal/attachment/domain"
	"attachkeeper/internal/attachment/infra/persistence/mongodb"
	"attachkeeper/internal/attachment/infra/persistence/mysql"
	"attachkeeper/internal/attachment/infra/storage"
	"attachkeeper/internal/attachment/interfaces/handler"
	"attachkeeper/internal/shared/infrastructure/db"
	sharedmongo "attachkeeper/internal/shared/infrastructure/mongo"
	"attachkeeper/internal/shared/logs"
	"attachkeeper/internal/shared/serverconfig"
	"attachkeeper/internal/shared/utils"
	"attachkeeper/modules/kit/errx"
	"attachkeeper/modules/kit/logx"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Module 按配置组装存储、记录类型注册表和记录仓储。
type Module struct {
	Registry *app.Registry
	Store    handler.RecordStore

	cfg     serverconfig.Config
	log     logx.Logger
	fsStore *storage.FS
	gridfs  *storage.GridFS
	closers []func(context.Context) error
}

// New 失败时会关闭已经打开的连接。
func New(ctx context.Context, cfg serverconfig.Config, log logx.Logger) (*Module, error) {
	if log == nil {
		log = logx.Nop()
	}
	m := &Module{cfg: cfg, log: log}
	if err := m.init(ctx); err != nil {
		return nil, multierr.Append(err, m.Close(context.Background()))
	}
	return m, nil
}

func (m *Module) init(ctx context.Context) error {
	cfg, log := m.cfg, m.log

	nodeID, err := utils.NodeIDFromEnv(cfg.NodeID)
	if err != nil {
		return err
	}
	ids, err := utils.NewSnowflake(nodeID)
	if err != nil {
		return err
	}

	var mdb *mongodriver.Database
	if cfg.Storage.Driver == serverconfig.StorageDriverGridFS || cfg.Persistence.Driver == serverconfig.PersistenceMongoDB {
		client, database, err := sharedmongo.Open(ctx, cfg.MongoDB, logs.L())
		if err != nil {
			return err
		}
		m.closers = append(m.closers, client.Disconnect)
		mdb = database
	}

	var store app.Storage
	switch cfg.Storage.Driver {
	case serverconfig.StorageDriverGridFS:
		m.gridfs = storage.NewGridFS(mdb, cfg.Storage.Bucket)
		store = m.gridfs
	default:
		m.fsStore, err = storage.NewOsFS(cfg.Storage.Root)
		if err != nil {
			return err
		}
		store = m.fsStore
	}

	m.Registry = app.NewRegistry(app.Options{
		PublicURL:            cfg.Attachment.PublicURL,
		VirtualPropKey:       cfg.Attachment.VirtualPropKey,
		UploadedFilesStorage: cfg.Attachment.UploadedFilesStorage,
	}, store, log)
	if err = RegisterSchemas(afero.NewOsFs(), m.Registry, cfg.Schemas); err != nil {
		return err
	}

	switch cfg.Persistence.Driver {
	case serverconfig.PersistenceMongoDB:
		m.Store = mongodb.NewRecordRepo(mdb, m.Registry, ids)
	default:
		gormDB, err := db.Open(cfg.MySQL)
		if err != nil {
			return err
		}
		if sqlDB, err := gormDB.DB(); err == nil {
			m.closers = append(m.closers, func(context.Context) error { return sqlDB.Close() })
		}
		if err = mysql.RegisterCallbacks(gormDB, m.Registry); err != nil {
			return errx.ErrInternal.WithCause(err)
		}
		repo := mysql.NewRecordRepo(gormDB, ids)
		if err = repo.Migrate(ctx); err != nil {
			return err
		}
		m.Store = repo
	}

	log.Info("attachment module ready",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("persistence", cfg.Persistence.Driver),
		zap.Strings("types", m.Registry.Types()),
	)
	return nil
}

// Register 挂载记录接口和对外文件访问。
func (m *Module) Register(r gin.IRouter) error {
	handler.NewRecords(m.Registry, m.Store, m.log).RegisterRoutes(r)
	if m.gridfs != nil {
		return handler.RegisterGridFS(r, m.cfg.Attachment.PublicURL, m.cfg.Attachment.UploadedFilesStorage, m.gridfs, m.log)
	}
	root := afero.NewBasePathFs(m.fsStore.Afero(), m.cfg.Attachment.UploadedFilesStorage)
	return handler.RegisterStatic(r, m.cfg.Attachment.PublicURL, afero.NewHttpFs(root))
}

func (m *Module) Close(ctx context.Context) error {
	var err error
	for i := len(m.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, m.closers[i](ctx))
	}
	m.closers = nil
	return err
}

// RegisterSchemas 读取每种记录类型的字段定义文件并注册，按类型名排序保证日志稳定。
func RegisterSchemas(fs afero.Fs, reg *app.Registry, schemas map[string]string) error {
	for _, typeID := range sortedKeys(schemas) {
		blocks, err := LoadSchemaFile(fs, schemas[typeID])
		if err != nil {
			return err
		}
		if _, err = reg.Register(typeID, blocks...); err != nil {
			return err
		}
	}
	return nil
}

func LoadSchemaFile(fs afero.Fs, path string) ([]domain.Schema, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errx.ErrMissingConfiguration.WithMsg("读取字段定义失败").WithData("path", path).WithCause(err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	blocks, err := domain.LoadSchemas(data, format)
	if err != nil {
		return nil, errx.ErrInvalidInput.WithMsg("字段定义格式错误").WithData("path", path).WithCause(err)
	}
	return blocks, nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
