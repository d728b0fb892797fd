package repo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/blob"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChunkStat summarises what has been written for one asset.
type ChunkStat struct {
	AssetID uuid.UUID
	Count   int
	Bytes   int64
}

type ChunkRepo interface {
	// Put writes chunk index of asset, overwriting any previous body.
	Put(ctx context.Context, a *model.Asset, index int, data []byte) error
	// Get returns gorm.ErrRecordNotFound when the chunk was never written.
	Get(ctx context.Context, a *model.Asset, index int) ([]byte, error)
	Stats(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]ChunkStat, error)
	// PurgeBodies drops externally stored bodies of an asset whose rows are gone.
	PurgeBodies(ctx context.Context, a *model.Asset) error
}

type chunkRepo struct {
	db *gorm.DB
	// nil keeps bodies inline in asset_chunks.data
	store blob.Store
}

// NewChunkRepo keeps chunk bodies in the database.
func NewChunkRepo(db *gorm.DB) ChunkRepo {
	return &chunkRepo{db: db}
}

// NewBlobChunkRepo keeps chunk rows in the database and bodies in store.
func NewBlobChunkRepo(db *gorm.DB, store blob.Store) ChunkRepo {
	return &chunkRepo{db: db, store: store}
}

func (r *chunkRepo) Put(ctx context.Context, a *model.Asset, index int, data []byte) error {
	sum := sha256.Sum256(data)
	row := model.AssetChunk{
		AssetID:   a.ID,
		Index:     index,
		Size:      len(data),
		SHA256:    hex.EncodeToString(sum[:]),
		UpdatedAt: time.Now(),
	}

	if r.store != nil {
		key := blob.ChunkKey(a.ProjectID.String(), a.ID.String(), index)
		if _, err := r.store.Put(ctx, key, data); err != nil {
			return err
		}
		row.StorageKey = key
	} else {
		row.Data = data
	}

	// last writer wins
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "asset_id"}, {Name: "idx"}},
		DoUpdates: clause.AssignmentColumns([]string{"size", "sha256", "storage_key", "data", "updated_at"}),
	}).Create(&row).Error
}

func (r *chunkRepo) Get(ctx context.Context, a *model.Asset, index int) ([]byte, error) {
	var row model.AssetChunk
	if err := r.db.WithContext(ctx).Where("asset_id = ? AND idx = ?", a.ID, index).First(&row).Error; err != nil {
		return nil, err
	}
	if row.StorageKey == "" {
		if row.Data == nil {
			return []byte{}, nil
		}
		return row.Data, nil
	}
	if r.store == nil {
		return nil, fmt.Errorf("chunk %d of asset %s is stored externally but no blob store is configured", index, a.ID)
	}
	b, err := r.store.Get(ctx, row.StorageKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, gorm.ErrRecordNotFound
	}
	return b, err
}

func (r *chunkRepo) Stats(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]ChunkStat, error) {
	out := make(map[uuid.UUID]ChunkStat, len(assetIDs))
	if len(assetIDs) == 0 {
		return out, nil
	}
	var rows []ChunkStat
	err := r.db.WithContext(ctx).Model(&model.AssetChunk{}).
		Select("asset_id, COUNT(*) AS count, COALESCE(SUM(size), 0) AS bytes").
		Where("asset_id IN ?", assetIDs).
		Group("asset_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, s := range rows {
		out[s.AssetID] = s
	}
	return out, nil
}

func (r *chunkRepo) PurgeBodies(ctx context.Context, a *model.Asset) error {
	if r.store == nil {
		return nil
	}
	return r.store.DeletePrefix(ctx, blob.AssetPrefix(a.ProjectID.String(), a.ID.String()))
}
