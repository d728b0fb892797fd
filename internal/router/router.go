package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/memodb-io/sitestore/docs"
	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/middleware"
	"github.com/memodb-io/sitestore/internal/modules/handler"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	ProjectHandler *handler.ProjectHandler
	VersionHandler *handler.VersionHandler
	AssetHandler   *handler.AssetHandler
	SiteHandler    *handler.SiteHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name, "/api/", "/p/"))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(cors.New(corsConfig(d.Config.App.CorsOrigins, d.Config.Root.PrincipalHeader)))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// public pages, no gateway token
	r.GET("/p/:slug", d.SiteHandler.PublicPage)

	v1 := r.Group("/api/v1")
	{
		v1.Use(middleware.GatewayAuth(d.Config))

		v1.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "pong"}) })

		project := v1.Group("/project")
		{
			project.GET("", d.ProjectHandler.ListProjects)
			project.POST("", d.ProjectHandler.CreateProject)
			project.GET("/:project_id", d.ProjectHandler.GetProject)
			project.PUT("/:project_id", d.ProjectHandler.UpdateProject)
			project.DELETE("/:project_id", d.ProjectHandler.DeleteProject)

			project.PUT("/:project_id/access", d.ProjectHandler.SetProjectAccess)
			project.POST("/:project_id/publish", d.ProjectHandler.PublishProject)

			project.GET("/:project_id/site", d.SiteHandler.LoadSite)
			project.POST("/:project_id/site", d.SiteHandler.SaveSite)

			version := project.Group("/:project_id/version")
			{
				version.GET("", d.VersionHandler.GetProjectVersions)
				version.POST("", d.VersionHandler.CreateVersion)
				version.GET("/:version_id/asset", d.AssetHandler.GetVersionAssets)
			}

			project.GET("/:project_id/asset", d.AssetHandler.GetProjectAssets)
			project.POST("/:project_id/asset", d.AssetHandler.StoreAssetMetadata)
		}

		asset := v1.Group("/asset")
		{
			asset.GET("/:asset_id", d.AssetHandler.GetAssetMetadata)
			asset.DELETE("/:asset_id", d.AssetHandler.DeleteAsset)
			asset.GET("/:asset_id/content", d.AssetHandler.GetAssetContent)

			asset.GET("/:asset_id/chunk/:index", d.AssetHandler.GetAssetChunk)
			asset.PUT("/:asset_id/chunk/:index", middleware.BodyLimit(int64(d.Config.ChunkSize())), d.AssetHandler.StoreAssetChunk)
		}
	}
	return r
}

func corsConfig(origins []string, principalHeader string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", principalHeader},
		ExposeHeaders: []string{"X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
