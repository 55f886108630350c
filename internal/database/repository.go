package database

import (
	"context"
	"fmt"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/repositories"
	"fullstack-todolist/backend/internal/repositories/mongostore"
	"fullstack-todolist/backend/internal/repositories/mysqlstore"
)

// CloseFunc はストア接続を閉じます。
type CloseFunc func(ctx context.Context) error

// OpenTodoRepository は設定されたドライバーに応じてTodoリポジトリを開きます。
func OpenTodoRepository(ctx context.Context, cfg config.StoreConfig) (repositories.TodoRepository, CloseFunc, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return mongostore.NewTodoRepository(coll), client.Disconnect, nil
	case config.DriverMySQL:
		db, err := OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return mysqlstore.NewTodoRepository(db), func(context.Context) error { return db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
