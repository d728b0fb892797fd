package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	dbpkg "github.com/memodb-io/sitestore/internal/infra/db"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testChunkSize = 4

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	RoutingKey string
	Data       interface{}
}

func (p *recordingPublisher) PublishJSON(_ context.Context, routingKey string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{RoutingKey: routingKey, Data: data})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.RoutingKey)
	}
	return out
}

// memPageCache is an in-process cache.PageCache.
type memPageCache struct {
	mu    sync.Mutex
	pages map[string][]byte
}

func (c *memPageCache) Get(_ context.Context, slug, versionID string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.pages[slug+":"+versionID]
	return b, ok, nil
}

func (c *memPageCache) Set(_ context.Context, slug, versionID string, page []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[slug+":"+versionID] = page
	return nil
}

func (c *memPageCache) Invalidate(_ context.Context, slug, versionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, slug+":"+versionID)
	return nil
}

var _ cache.PageCache = (*memPageCache)(nil)
var _ mq.Publisher = (*recordingPublisher)(nil)

// testEnv wires every service over an in-memory sqlite database.
type testEnv struct {
	db  *gorm.DB
	pub *recordingPublisher

	projectRepo repo.ProjectRepo
	assetRepo   repo.AssetRepo
	versionRepo repo.VersionRepo
	chunkRepo   repo.ChunkRepo
	pages       *memPageCache

	access   AccessService
	projects ProjectService
	assets   AssetService
	versions VersionService
	publish  PublishService
	sites    SiteService
}

type envOption func(*envConfig)

type envConfig struct {
	sweepInline  bool
	sweepAfter   time.Duration
	maxAssetSize int64
}

func withMaxAssetSize(n int64) envOption {
	return func(c *envConfig) { c.maxAssetSize = n }
}

func withInlineSweep(after time.Duration) envOption {
	return func(c *envConfig) {
		c.sweepInline = true
		c.sweepAfter = after
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{sweepAfter: time.Hour}
	for _, o := range opts {
		o(&cfg)
	}

	d, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, dbpkg.Migrate(d))

	log := zap.NewNop()
	e := &testEnv{
		db:          d,
		pub:         &recordingPublisher{},
		projectRepo: repo.NewProjectRepo(d),
		assetRepo:   repo.NewAssetRepo(d),
		versionRepo: repo.NewVersionRepo(d),
		chunkRepo:   repo.NewChunkRepo(d),
		pages:       &memPageCache{pages: map[string][]byte{}},
	}
	e.access = NewAccessService(e.projectRepo, log)
	e.projects = NewProjectService(e.projectRepo, e.chunkRepo, e.access, e.pages, e.pub, log)
	e.assets = NewAssetService(e.access, e.projectRepo, e.assetRepo, e.versionRepo, e.chunkRepo, StorageOptions{
		ChunkSize:    testChunkSize,
		SweepAfter:   cfg.sweepAfter,
		MaxAssetSize: cfg.maxAssetSize,
	}, log)
	e.versions = NewVersionService(e.versionRepo, e.access, e.pub, log)
	e.publish = NewPublishService(e.projectRepo, e.assetRepo, e.chunkRepo, e.access, e.pages, e.pub, editor.CanonicalFirstStrategy{}, testChunkSize, log)

	var sitePub mq.Publisher = e.pub
	if cfg.sweepInline {
		sitePub = nil
	}
	e.sites = NewSiteService(e.access, e.versions, e.assets, e.versionRepo, e.assetRepo, e.chunkRepo, editor.CanonicalFirstStrategy{}, testChunkSize, sitePub, log)
	return e
}

func (e *testEnv) createProject(t *testing.T, owner model.Principal) *model.Project {
	t.Helper()
	p, err := e.projects.Create(context.Background(), owner, CreateProjectInput{Name: "Landing " + uuid.NewString()[:4]})
	require.NoError(t, err)
	return p
}
