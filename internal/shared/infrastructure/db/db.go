package db

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"attachkeeper/internal/shared/logs"
	"attachkeeper/internal/shared/serverconfig"
	"attachkeeper/modules/kit/errx"
)

// Open 连接 MySQL，附件钩子由调用方在返回的 *gorm.DB 上注册。
func Open(cfg serverconfig.MySQLConfig) (*gorm.DB, error) {
	if cfg.Host == "" || cfg.DBName == "" {
		return nil, errx.ErrMissingConfiguration.WithData("key", "mysql")
	}
	charset := cfg.Charset
	if charset == "" {
		charset = "utf8mb4"
	}

	gcfg := &gorm.Config{
		Logger: logs.NewGormLogger(logger.Warn, cfg.SlowThreshold),
	}

	// username:password@protocol(address)/dbname?charset=utf8&parseTime=True&loc=Local
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		charset,
	)
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, errx.ErrUnavailable.WithData("host", cfg.Host).WithCause(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errx.ErrUnavailable.WithData("host", cfg.Host).WithCause(err)
	}
	if cfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}

	logs.Info("open db success",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("db", cfg.DBName),
		zap.String("user", cfg.User),
	)
	return db, nil
}
