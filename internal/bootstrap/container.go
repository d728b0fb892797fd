package bootstrap

import (
	"context"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/infra/blob"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	"github.com/memodb-io/sitestore/internal/infra/db"
	"github.com/memodb-io/sitestore/internal/infra/logger"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/handler"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func BuildContainer() *do.Injector {
	inj := do.New()

	// config
	do.Provide(inj, func(i *do.Injector) (*config.Config, error) {
		return config.Load()
	})

	// logger
	do.Provide(inj, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return logger.New(cfg.Log.Level)
	})

	// DB
	do.Provide(inj, func(i *do.Injector) (*gorm.DB, error) {
		cfg := do.MustInvoke[*config.Config](i)
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		// [optional] auto migrate
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(d); err != nil {
				return nil, err
			}
		}
		return d, nil
	})

	// Redis, only dialed when an address is configured
	do.Provide(inj, func(i *do.Injector) (*redis.Client, error) {
		return cache.New(do.MustInvoke[*config.Config](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (cache.PageCache, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Redis.Addr == "" {
			return cache.NopPageCache{}, nil
		}
		return cache.NewPageCache(do.MustInvoke[*redis.Client](i), cfg.PublicCacheTTL()), nil
	})

	// RabbitMQ Connection
	do.Provide(inj, func(i *do.Injector) (*amqp.Connection, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return amqp.Dial(cfg.RabbitMQ.URL)
	})
	do.Provide(inj, func(i *do.Injector) (mq.Publisher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.RabbitMQ.URL == "" {
			return mq.NopPublisher{}, nil
		}
		return mq.NewPublisher(do.MustInvoke[*amqp.Connection](i), cfg.RabbitMQ.Exchange, do.MustInvoke[*zap.Logger](i))
	})

	// S3
	do.Provide(inj, func(i *do.Injector) (*blob.S3Deps, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return blob.NewS3(context.Background(), cfg)
	})

	do.Provide(inj, func(i *do.Injector) (editor.SelectStrategy, error) {
		return editor.GetSelectStrategy(do.MustInvoke[*config.Config](i).Storage.SelectStrategy)
	})

	// Repo
	do.Provide(inj, func(i *do.Injector) (repo.ProjectRepo, error) {
		return repo.NewProjectRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.VersionRepo, error) {
		return repo.NewVersionRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.AssetRepo, error) {
		return repo.NewAssetRepo(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (repo.ChunkRepo, error) {
		cfg := do.MustInvoke[*config.Config](i)
		if cfg.Storage.Backend == config.StorageBackendS3 {
			return repo.NewBlobChunkRepo(do.MustInvoke[*gorm.DB](i), do.MustInvoke[*blob.S3Deps](i)), nil
		}
		return repo.NewChunkRepo(do.MustInvoke[*gorm.DB](i)), nil
	})

	// Service
	do.Provide(inj, func(i *do.Injector) (service.AccessService, error) {
		return service.NewAccessService(do.MustInvoke[repo.ProjectRepo](i), do.MustInvoke[*zap.Logger](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.ProjectService, error) {
		return service.NewProjectService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.ChunkRepo](i),
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[cache.PageCache](i),
			do.MustInvoke[mq.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.VersionService, error) {
		return service.NewVersionService(
			do.MustInvoke[repo.VersionRepo](i),
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[mq.Publisher](i),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.AssetService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewAssetService(
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.VersionRepo](i),
			do.MustInvoke[repo.ChunkRepo](i),
			service.StorageOptions{ChunkSize: cfg.ChunkSize(), SweepAfter: cfg.SweepAfter(), MaxAssetSize: cfg.MaxAssetSize()},
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.PublishService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return service.NewPublishService(
			do.MustInvoke[repo.ProjectRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.ChunkRepo](i),
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[cache.PageCache](i),
			do.MustInvoke[mq.Publisher](i),
			do.MustInvoke[editor.SelectStrategy](i),
			cfg.ChunkSize(),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (service.SiteService, error) {
		cfg := do.MustInvoke[*config.Config](i)
		// without a broker the sweep runs inline after each save
		var pub mq.Publisher
		if cfg.RabbitMQ.URL != "" {
			pub = do.MustInvoke[mq.Publisher](i)
		}
		return service.NewSiteService(
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[service.VersionService](i),
			do.MustInvoke[service.AssetService](i),
			do.MustInvoke[repo.VersionRepo](i),
			do.MustInvoke[repo.AssetRepo](i),
			do.MustInvoke[repo.ChunkRepo](i),
			do.MustInvoke[editor.SelectStrategy](i),
			cfg.ChunkSize(),
			pub,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	// Handler
	do.Provide(inj, func(i *do.Injector) (*handler.ProjectHandler, error) {
		return handler.NewProjectHandler(
			do.MustInvoke[service.ProjectService](i),
			do.MustInvoke[service.AccessService](i),
			do.MustInvoke[service.PublishService](i),
		), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.VersionHandler, error) {
		return handler.NewVersionHandler(do.MustInvoke[service.VersionService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.AssetHandler, error) {
		return handler.NewAssetHandler(do.MustInvoke[service.AssetService](i)), nil
	})
	do.Provide(inj, func(i *do.Injector) (*handler.SiteHandler, error) {
		return handler.NewSiteHandler(
			do.MustInvoke[service.SiteService](i),
			do.MustInvoke[service.PublishService](i),
		), nil
	})

	return inj
}
