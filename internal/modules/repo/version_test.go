package repo

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestVersionRepo_CreateUpdatesCurrentVersion(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, d, "alice")
	r := NewVersionRepo(d)

	v1, err := r.Create(ctx, p.ID, "alice", "v1")
	require.NoError(t, err)
	v2, err := r.Create(ctx, p.ID, "bob", "v2")
	require.NoError(t, err)
	assert.Less(t, v1.ID, v2.ID)

	got, err := NewProjectRepo(d).Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CurrentVersionID)
	assert.Equal(t, v2.ID, *got.CurrentVersionID)

	items, err := r.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, v1.ID, items[0].ID)
	assert.Equal(t, model.Principal("bob"), items[1].CreatedBy)

	fetched, err := r.Get(ctx, p.ID, v1.ID)
	require.NoError(t, err)
	assert.Equal(t, "v1", fetched.Description)
}

func TestVersionRepo_UnknownProject(t *testing.T) {
	d := newTestDB(t)
	_, err := NewVersionRepo(d).Create(context.Background(), uuid.New(), "alice", "v1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVersionRepo_FrozenClockStillIncreases(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, d, "alice")

	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &versionRepo{db: d, now: func() time.Time { return frozen }}

	var ids []string
	for i := 0; i < 5; i++ {
		v, err := r.Create(ctx, p.ID, "alice", "")
		require.NoError(t, err)
		ids = append(ids, v.ID)
	}
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}
	assert.Equal(t, model.VersionID(frozen.UnixMicro()), ids[0])
	assert.Equal(t, model.VersionID(frozen.UnixMicro()+4), ids[4])

	// a clock that steps backwards cannot produce a smaller id
	r.now = func() time.Time { return frozen.Add(-time.Hour) }
	v, err := r.Create(ctx, p.ID, "alice", "")
	require.NoError(t, err)
	assert.Less(t, ids[4], v.ID)
}

func TestVersionRepo_ConcurrentCreateIsUnique(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	p := createTestProject(t, d, "alice")
	r := NewVersionRepo(d)

	const n = 16
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []string
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Create(ctx, p.ID, "alice", "")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids = append(ids, v.ID)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, ids, n)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate version id %s", id)
		seen[id] = true
	}

	listed, err := r.List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, n)
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	for i, v := range listed {
		assert.Equal(t, sorted[i], v.ID)
		if i > 0 {
			assert.True(t, listed[i-1].CreatedAt.Before(v.CreatedAt))
		}
	}
}
