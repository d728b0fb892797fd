package repo

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/blob"
	dbpkg "github.com/memodb-io/sitestore/internal/infra/db"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database. A single connection keeps
// the database alive and serializes transactions the way row locks would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := d.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dbpkg.Migrate(d))
	return d
}

func createTestProject(t *testing.T, d *gorm.DB, owner model.Principal) *model.Project {
	t.Helper()
	p := &model.Project{
		Owner:   owner,
		Name:    "Landing page",
		URLSlug: "landing-" + strings.ToLower(uuid.NewString()[:8]),
	}
	require.NoError(t, NewProjectRepo(d).Create(context.Background(), p))
	return p
}

// memBlobStore is an in-process blob.Store.
type memBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{objects: map[string][]byte{}}
}

func (m *memBlobStore) Put(_ context.Context, key string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return "etag-" + key, nil
}

func (m *memBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, blob.ErrNotFound
	}
	return b, nil
}

func (m *memBlobStore) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			delete(m.objects, k)
		}
	}
	return nil
}

func (m *memBlobStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
