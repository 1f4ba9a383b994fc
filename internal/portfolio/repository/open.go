package repository

import (
	"context"
	"fmt"

	"github.com/portfolio-site/portfolio-api/internal/config"
	"github.com/portfolio-site/portfolio-api/internal/database"
	"github.com/portfolio-site/portfolio-api/pkg/logger"
)

const mongoConnectAttempts = 5

// Open returns the Store selected by STORE_DRIVER and a function releasing
// its resources.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.Store.Driver {
	case "file", "":
		logger.Infof("store: json file %s", cfg.Store.DataFile)
		return NewFileStore(cfg.Store.DataFile), func() {}, nil
	case "mongo":
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		logger.Infof("store: mongo %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}
		return NewMongoStore(col), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
