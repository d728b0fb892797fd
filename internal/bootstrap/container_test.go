package bootstrap

import (
	"testing"

	"github.com/memodb-io/sitestore/internal/config"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	"github.com/memodb-io/sitestore/internal/infra/db"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/handler"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestBuildContainer_WithoutBrokerOrCache(t *testing.T) {
	inj := BuildContainer()

	cfg := &config.Config{}
	cfg.Storage.Backend = config.StorageBackendDB
	do.OverrideValue(inj, cfg)
	do.OverrideValue(inj, zap.NewNop())

	d, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	do.OverrideValue(inj, d)

	assert.IsType(t, cache.NopPageCache{}, do.MustInvoke[cache.PageCache](inj))
	assert.IsType(t, mq.NopPublisher{}, do.MustInvoke[mq.Publisher](inj))
	assert.Equal(t, "canonical_first", do.MustInvoke[editor.SelectStrategy](inj).Name())

	assert.NotNil(t, do.MustInvoke[*handler.ProjectHandler](inj))
	assert.NotNil(t, do.MustInvoke[*handler.VersionHandler](inj))
	assert.NotNil(t, do.MustInvoke[*handler.AssetHandler](inj))
	assert.NotNil(t, do.MustInvoke[*handler.SiteHandler](inj))
}

func TestBuildContainer_UnknownStrategy(t *testing.T) {
	inj := BuildContainer()

	cfg := &config.Config{}
	cfg.Storage.SelectStrategy = "newest"
	do.OverrideValue(inj, cfg)

	_, err := do.Invoke[editor.SelectStrategy](inj)
	assert.Error(t, err)
}
