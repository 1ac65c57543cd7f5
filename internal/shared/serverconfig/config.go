package serverconfig

import (
	"path/filepath"

	"attachkeeper/internal/shared/config"
	"attachkeeper/modules/kit/errx"
)

const (
	StorageDriverFS     = "fs"
	StorageDriverGridFS = "gridfs"

	PersistenceMySQL   = "mysql"
	PersistenceMongoDB = "mongodb"
)

var defaults = map[string]any{
	"log.level":                         "info",
	"httpserver.host":                   "0.0.0.0",
	"httpserver.port":                   8080,
	"attachment.public_url":             "/images/",
	"attachment.virtual_prop_key":       "src",
	"attachment.uploaded_files_storage": "",
	"storage.driver":                    StorageDriverFS,
	"storage.root":                      "./data",
	"storage.bucket":                    "attachments",
	"persistence.driver":                PersistenceMySQL,
	"mysql.slow_threshold":              "200ms",
	"mongodb.connect_timeout_s":         3,
	"node_id":                           1,
}

// Load 读取配置文件并校验，返回的 Loader 可用于 Watch。
func Load(cfgName string) (Config, *config.Loader, error) {
	path, err := config.Resolve(cfgName)
	if err != nil {
		return Config{}, nil, err
	}
	l := config.New(path)
	for k, v := range defaults {
		l.SetDefault(k, v)
	}

	var c Config
	if err = l.Load(&c); err != nil {
		return Config{}, nil, err
	}
	if err = c.Validate(); err != nil {
		return Config{}, nil, err
	}
	c.resolveSchemaPaths(filepath.Dir(path))
	return c, l, nil
}

// Validate 只检查附件生命周期必须的配置，数据库等连接参数在 Open 时报错。
func (c Config) Validate() error {
	if c.Attachment.UploadedFilesStorage == "" {
		return errx.ErrMissingConfiguration.WithData("key", "attachment.uploaded_files_storage")
	}
	switch c.Storage.Driver {
	case StorageDriverFS, StorageDriverGridFS:
	default:
		return errx.ErrInvalidInput.WithMsg("未知的存储驱动").WithData("storage.driver", c.Storage.Driver)
	}
	switch c.Persistence.Driver {
	case PersistenceMySQL, PersistenceMongoDB:
	default:
		return errx.ErrInvalidInput.WithMsg("未知的持久化驱动").WithData("persistence.driver", c.Persistence.Driver)
	}
	return nil
}

func (c *Config) resolveSchemaPaths(baseDir string) {
	for typeID, p := range c.Schemas {
		if p != "" && !filepath.IsAbs(p) {
			c.Schemas[typeID] = filepath.Join(baseDir, p)
		}
	}
}
