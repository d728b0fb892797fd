package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error)
	GetBySlug(ctx context.Context, slug string) (*model.Project, error)
	ListForPrincipal(ctx context.Context, principal model.Principal) ([]*model.Project, error)
	Update(ctx context.Context, projectID uuid.UUID, fields map[string]interface{}) error
	ReplaceCollaborators(ctx context.Context, projectID uuid.UUID, principals []model.Principal) error
	SetPublished(ctx context.Context, projectID uuid.UUID, published bool, versionID *string) error
	// Delete removes the project with its versions, assets and chunk rows, and
	// returns the assets that were removed so their bodies can be purged.
	Delete(ctx context.Context, projectID uuid.UUID) ([]model.Asset, error)
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Collaborators", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, principal ASC")
	})
}

func (r *projectRepo) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	if err := r.preloaded(ctx).Where("id = ?", projectID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	var p model.Project
	if err := r.preloaded(ctx).Where("url_slug = ?", slug).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) ListForPrincipal(ctx context.Context, principal model.Principal) ([]*model.Project, error) {
	member := r.db.Model(&model.ProjectCollaborator{}).Select("project_id").Where("principal = ?", principal)

	var items []*model.Project
	err := r.preloaded(ctx).
		Where("owner = ? OR id IN (?)", principal, member).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	return items, err
}

func (r *projectRepo) Update(ctx context.Context, projectID uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.Project{}).Where("id = ?", projectID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceCollaborators swaps the whole collaborator set inside one transaction.
func (r *projectRepo) ReplaceCollaborators(ctx context.Context, projectID uuid.UUID, principals []model.Principal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectCollaborator{}).Error; err != nil {
			return fmt.Errorf("clear collaborators: %w", err)
		}
		if len(principals) > 0 {
			rows := make([]model.ProjectCollaborator, 0, len(principals))
			for _, p := range principals {
				rows = append(rows, model.ProjectCollaborator{ProjectID: projectID, Principal: p})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert collaborators: %w", err)
			}
		}
		return tx.Model(&model.Project{}).Where("id = ?", projectID).Update("updated_at", time.Now()).Error
	})
}

func (r *projectRepo) SetPublished(ctx context.Context, projectID uuid.UUID, published bool, versionID *string) error {
	return r.Update(ctx, projectID, map[string]interface{}{
		"published":            published,
		"published_version_id": versionID,
	})
}

func (r *projectRepo) Delete(ctx context.Context, projectID uuid.UUID) ([]model.Asset, error) {
	var assets []model.Asset
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Project
		if err := tx.Where("id = ?", projectID).First(&p).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", projectID).Find(&assets).Error; err != nil {
			return fmt.Errorf("query assets: %w", err)
		}

		// Children first so the delete does not depend on FK cascade support.
		if len(assets) > 0 {
			ids := make([]uuid.UUID, 0, len(assets))
			for _, a := range assets {
				ids = append(ids, a.ID)
			}
			if err := tx.Where("asset_id IN ?", ids).Delete(&model.AssetChunk{}).Error; err != nil {
				return fmt.Errorf("delete chunks: %w", err)
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.Asset{}).Error; err != nil {
			return fmt.Errorf("delete assets: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectVersion{}).Error; err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectCollaborator{}).Error; err != nil {
			return fmt.Errorf("delete collaborators: %w", err)
		}
		if err := tx.Delete(&p).Error; err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return assets, nil
}
