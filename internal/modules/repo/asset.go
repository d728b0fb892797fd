package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"gorm.io/gorm"
)

type AssetRepo interface {
	Create(ctx context.Context, a *model.Asset) error
	Get(ctx context.Context, assetID uuid.UUID) (*model.Asset, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Asset, error)
	ListByVersion(ctx context.Context, projectID uuid.UUID, versionID string) ([]*model.Asset, error)
	// ListStale returns assets of the project created before cutoff whose
	// version is not one of keepVersions.
	ListStale(ctx context.Context, projectID uuid.UUID, keepVersions []string, cutoff time.Time) ([]*model.Asset, error)
	// Delete removes the asset row and its chunk rows.
	Delete(ctx context.Context, assetID uuid.UUID) (*model.Asset, error)
}

type assetRepo struct{ db *gorm.DB }

func NewAssetRepo(db *gorm.DB) AssetRepo {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, a *model.Asset) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assetRepo) Get(ctx context.Context, assetID uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	if err := r.db.WithContext(ctx).Where("id = ?", assetID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assetRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*model.Asset, error) {
	items := make([]*model.Asset, 0)
	return items, r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
}

func (r *assetRepo) ListByVersion(ctx context.Context, projectID uuid.UUID, versionID string) ([]*model.Asset, error) {
	items := make([]*model.Asset, 0)
	return items, r.db.WithContext(ctx).
		Where("project_id = ? AND version_id = ?", projectID, versionID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
}

func (r *assetRepo) ListStale(ctx context.Context, projectID uuid.UUID, keepVersions []string, cutoff time.Time) ([]*model.Asset, error) {
	q := r.db.WithContext(ctx).Where("project_id = ? AND created_at < ?", projectID, cutoff)
	if len(keepVersions) > 0 {
		q = q.Where("version_id NOT IN ?", keepVersions)
	}
	items := make([]*model.Asset, 0)
	return items, q.Order("created_at ASC, id ASC").Find(&items).Error
}

func (r *assetRepo) Delete(ctx context.Context, assetID uuid.UUID) (*model.Asset, error) {
	var a model.Asset
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", assetID).First(&a).Error; err != nil {
			return err
		}
		if err := tx.Where("asset_id = ?", assetID).Delete(&model.AssetChunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks: %w", err)
		}
		return tx.Delete(&a).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}
