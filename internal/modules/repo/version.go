package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"gorm.io/gorm"
)

type VersionRepo interface {
	// Create mints the next version of a project and makes it current.
	Create(ctx context.Context, projectID uuid.UUID, createdBy model.Principal, description string) (*model.ProjectVersion, error)
	Get(ctx context.Context, projectID uuid.UUID, versionID string) (*model.ProjectVersion, error)
	List(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectVersion, error)
}

type versionRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewVersionRepo(db *gorm.DB) VersionRepo {
	return &versionRepo{db: db, now: time.Now}
}

// Create assigns ids through an atomic update of projects.last_version_at:
// the new value is max(now, previous+1) in microseconds. The UPDATE holds the
// project row lock until commit, so concurrent creators for one project are
// serialized and always observe each other's bump.
func (r *versionRepo) Create(ctx context.Context, projectID uuid.UUID, createdBy model.Principal, description string) (*model.ProjectVersion, error) {
	var v *model.ProjectVersion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := r.now().UnixMicro()
		res := tx.Model(&model.Project{}).Where("id = ?", projectID).UpdateColumn(
			"last_version_at",
			gorm.Expr("CASE WHEN last_version_at >= ? THEN last_version_at + 1 ELSE ? END", now, now),
		)
		if res.Error != nil {
			return fmt.Errorf("bump version clock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var p model.Project
		if err := tx.Select("id", "last_version_at").Where("id = ?", projectID).First(&p).Error; err != nil {
			return err
		}

		v = &model.ProjectVersion{
			ProjectID:   projectID,
			ID:          model.VersionID(p.LastVersionAt),
			CreatedBy:   createdBy,
			Description: description,
			CreatedAt:   time.UnixMicro(p.LastVersionAt).UTC(),
		}
		if err := tx.Create(v).Error; err != nil {
			return fmt.Errorf("insert version: %w", err)
		}

		return tx.Model(&model.Project{}).Where("id = ?", projectID).UpdateColumns(map[string]interface{}{
			"current_version_id": v.ID,
			"updated_at":         v.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *versionRepo) Get(ctx context.Context, projectID uuid.UUID, versionID string) (*model.ProjectVersion, error) {
	var v model.ProjectVersion
	if err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, versionID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *versionRepo) List(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectVersion, error) {
	var items []*model.ProjectVersion
	return items, r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&items).Error
}
