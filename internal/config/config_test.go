package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Setenv("SITE_BUCKET", "site-chunks")

	doc := `
app:
  name: sitestore-test
  port: 9090
storage:
  backend: s3
  chunkSize: 4096
s3:
  bucket: ${SITE_BUCKET}
`
	cfg, err := parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "sitestore-test", cfg.App.Name)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, StorageBackendS3, cfg.Storage.Backend)
	assert.Equal(t, 4096, cfg.ChunkSize())
	assert.Equal(t, "site-chunks", cfg.S3.Bucket)

	// defaults survive a partial file
	assert.Equal(t, "X-Principal-Id", cfg.Root.PrincipalHeader)
	assert.Equal(t, time.Hour, cfg.SweepAfter())
	assert.Equal(t, 5*time.Minute, cfg.PublicCacheTTL())
	assert.Equal(t, int64(DefaultMaxAssetSize), cfg.MaxAssetSize())
}

func TestConfig_Fallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize())
	assert.Equal(t, time.Hour, cfg.SweepAfter())
	assert.Equal(t, 5*time.Minute, cfg.PublicCacheTTL())

	cfg.Storage.SweepAfterSec = 30
	cfg.Cache.PublicTTLSec = 10
	cfg.Storage.MaxAssetSize = 1 << 10
	assert.Equal(t, int64(1<<10), cfg.MaxAssetSize())
	assert.Equal(t, 30*time.Second, cfg.SweepAfter())
	assert.Equal(t, 10*time.Second, cfg.PublicCacheTTL())
}
