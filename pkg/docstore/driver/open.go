// Package driver opens the docstore backend selected by configuration.
package driver

import (
	"context"

	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/firestore"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/memory"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/mongo"
	"github.com/angelmondragon/pantryshare-backend/pkg/enums"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

// Store is a docstore that holds a connection.
type Store interface {
	docstore.Store
	Close() error
}

func Open(ctx context.Context, cfg config.DocStoreConfig, logg *logger.Logger) (Store, error) {
	switch cfg.Driver {
	case enums.DocStoreDriverFirestore:
		return firestore.New(ctx, cfg, logg)
	case enums.DocStoreDriverMongo:
		return mongo.New(ctx, cfg, logg)
	default:
		if logg != nil {
			logg.Warn(ctx, "docstore.memory: data is not persisted across restarts")
		}
		return memory.New(), nil
	}
}
