package service

import (
	"context"

	"github.com/google/uuid"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"go.uber.org/zap"
)

type VersionService interface {
	CreateVersion(ctx context.Context, who model.Principal, projectID uuid.UUID, description string) (*model.ProjectVersion, error)
	GetProjectVersions(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.ProjectVersion, error)
}

type versionService struct {
	r      repo.VersionRepo
	access AccessService
	pub    mq.Publisher
	log    *zap.Logger
}

func NewVersionService(r repo.VersionRepo, access AccessService, pub mq.Publisher, log *zap.Logger) VersionService {
	return &versionService{r: r, access: access, pub: pub, log: log}
}

func (s *versionService) CreateVersion(ctx context.Context, who model.Principal, projectID uuid.UUID, description string) (*model.ProjectVersion, error) {
	if _, err := s.access.Authorize(ctx, projectID, who, ActionWrite); err != nil {
		return nil, err
	}

	v, err := s.r.Create(ctx, projectID, who, description)
	if err != nil {
		return nil, apperr.FromDB("create version", err)
	}

	if err := s.pub.PublishJSON(ctx, mq.RoutingVersionCreated, mq.VersionCreated{
		ProjectID: projectID.String(),
		VersionID: v.ID,
		CreatedBy: string(who),
	}); err != nil {
		s.log.Sugar().Warnw("publish version created", "project_id", projectID, "version_id", v.ID, "err", err)
	}
	return v, nil
}

func (s *versionService) GetProjectVersions(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.ProjectVersion, error) {
	if _, err := s.access.Authorize(ctx, projectID, who, ActionRead); err != nil {
		return nil, err
	}
	items, err := s.r.List(ctx, projectID)
	if err != nil {
		return nil, apperr.FromDB("list versions", err)
	}
	if items == nil {
		items = []*model.ProjectVersion{}
	}
	return items, nil
}
