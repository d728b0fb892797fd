package main

//	@title			sitestore API
//	@version		1.0
//	@description	Asset storage, versioning and publishing for the site editor.
//	@schemes		http https
//	@BasePath		/api/v1

//  Bearer presented by the identity gateway
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Gateway bearer token (e.g., "Bearer <root token>")

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/bootstrap"
	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	dbpkg "github.com/memodb-io/sitestore/internal/infra/db"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/handler"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/router"
	"github.com/memodb-io/sitestore/internal/telemetry"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	db := do.MustInvoke[*gorm.DB](inj)

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()

		if err := dbpkg.RegisterOpenTelemetryPlugin(db); err != nil {
			log.Sugar().Warnw("failed to register GORM OpenTelemetry plugin, continuing without database tracing", "err", err)
		}
		if cfg.Redis.Addr != "" {
			if err := cache.RegisterOpenTelemetryPlugin(do.MustInvoke[*redis.Client](inj)); err != nil {
				log.Sugar().Warnw("failed to register Redis OpenTelemetry plugin, continuing without Redis tracing", "err", err)
			}
		}
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	engine := router.NewRouter(router.RouterDeps{
		Config:         cfg,
		Log:            log,
		ProjectHandler: do.MustInvoke[*handler.ProjectHandler](inj),
		VersionHandler: do.MustInvoke[*handler.VersionHandler](inj),
		AssetHandler:   do.MustInvoke[*handler.AssetHandler](inj),
		SiteHandler:    do.MustInvoke[*handler.SiteHandler](inj),
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// sweep worker
	if cfg.RabbitMQ.URL != "" {
		consumer := mq.NewConsumer(
			do.MustInvoke[*amqp.Connection](inj),
			cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.SweepQueue,
			cfg.RabbitMQ.Prefetch,
			log,
		)
		sweep := service.SweepHandler(do.MustInvoke[service.AssetService](inj), log)
		go func() {
			if err := consumer.Run(ctx, mq.RoutingSaveCompleted, sweep); err != nil {
				log.Sugar().Errorw("sweep consumer stopped", "err", err)
			}
		}()
	} else {
		log.Sugar().Info("no broker configured, sweeping inline after each save")
	}

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr, "storage", cfg.Storage.Backend, "chunk_size", cfg.ChunkSize())
		log.Sugar().Infow("swagger url", "url", addr+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	_ = log.Sync()
	log.Sugar().Info("server exited")
}
