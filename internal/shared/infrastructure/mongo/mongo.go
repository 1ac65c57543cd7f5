package mongo

import (
	"context"
	"time"

	"attachkeeper/internal/shared/serverconfig"
	"attachkeeper/modules/kit/errx"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// Open 连接 mongo 并 Ping 一次，返回配置里指定的 database。
func Open(ctx context.Context, cfg serverconfig.MongoDBConfig, l *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	if cfg.URI == "" || cfg.Database == "" {
		return nil, nil, errx.ErrMissingConfiguration.WithData("key", "mongodb")
	}
	if l == nil {
		l = zap.NewNop()
	}

	timeout := time.Duration(cfg.ConnectTimeoutS) * time.Second
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, errx.ErrUnavailable.WithData("database", cfg.Database).WithCause(err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errx.ErrUnavailable.WithData("database", cfg.Database).WithCause(err)
	}

	l.Info("open mongodb success",
		zap.String("database", cfg.Database),
	)
	return client, client.Database(cfg.Database), nil
}
