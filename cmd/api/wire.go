package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/internal/catalog"
	"github.com/angelmondragon/storefront-pricing/pkg/config"
	"github.com/angelmondragon/storefront-pricing/pkg/db"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/redis"
)

type productSource interface {
	catalog.Accessor
	catalog.Lister
}

func buildCatalog(ctx context.Context, cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (productSource, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceDB:
		if dbClient == nil {
			return nil, fmt.Errorf("catalog source %q requires a database", cfg.Catalog.Source)
		}
		return catalog.NewRepository(dbClient.DB()), nil
	default:
		products, err := catalog.LoadFile(cfg.Catalog.ProductsPath)
		if err != nil {
			return nil, err
		}
		ctx = logg.WithFields(ctx, map[string]any{"path": cfg.Catalog.ProductsPath, "products": products.Len()})
		if problems := products.Problems(); problems != nil {
			logg.Warn(ctx, fmt.Sprintf("catalog loaded with problems: %v", problems))
		} else {
			logg.Info(ctx, "catalog loaded")
		}
		return products, nil
	}
}

func loadCustomers(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*catalog.Customers, error) {
	customers, err := catalog.LoadCustomers(cfg.Catalog.CustomersPath)
	if errors.Is(err, fs.ErrNotExist) {
		logg.Warn(logg.WithField(ctx, "path", cfg.Catalog.CustomersPath), "customers file not found, identity switching disabled")
		return catalog.NewCustomers(), nil
	}
	return customers, err
}

func openCartBlobs(cfg *config.Config, redisClient *redis.Client) (cart.BlobStore, error) {
	switch cfg.Cart.Store {
	case config.CartStoreBolt:
		return cart.OpenBolt(cfg.Cart.BoltPath)
	case config.CartStoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("cart store %q requires redis", cfg.Cart.Store)
		}
		return cart.NewRedisBlob(redisClient, cfg.Cart.RedisTTL), nil
	default:
		return cart.NewMemoryBlob(), nil
	}
}
