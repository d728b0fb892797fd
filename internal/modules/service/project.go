package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/utils"
	"go.uber.org/zap"
)

type ProjectService interface {
	Create(ctx context.Context, who model.Principal, in CreateProjectInput) (*model.Project, error)
	Get(ctx context.Context, who model.Principal, projectID uuid.UUID) (*model.Project, error)
	List(ctx context.Context, who model.Principal) ([]*model.Project, error)
	Update(ctx context.Context, who model.Principal, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error)
	Delete(ctx context.Context, who model.Principal, projectID uuid.UUID) error
}

type CreateProjectInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	TemplateID  *string `json:"template_id"`
}

// UpdateProjectInput carries the fields to change; nil fields are left alone.
type UpdateProjectInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	TemplateID  *string `json:"template_id"`
}

type projectService struct {
	r      repo.ProjectRepo
	chunks repo.ChunkRepo
	access AccessService
	pages  cache.PageCache
	pub    mq.Publisher
	log    *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, chunks repo.ChunkRepo, access AccessService, pages cache.PageCache, pub mq.Publisher, log *zap.Logger) ProjectService {
	return &projectService{r: r, chunks: chunks, access: access, pages: pages, pub: pub, log: log}
}

func (s *projectService) Create(ctx context.Context, who model.Principal, in CreateProjectInput) (*model.Project, error) {
	if who == "" {
		return nil, apperr.Unauthorized("create project", "missing principal")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.InvalidInput("create project", "name is empty")
	}

	slug, err := utils.GenerateSlug(name)
	if err != nil {
		return nil, apperr.Transport("generate slug", err)
	}

	p := &model.Project{
		Owner:       who,
		Name:        name,
		Description: in.Description,
		URLSlug:     slug,
		TemplateID:  in.TemplateID,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, apperr.FromDB("create project", err)
	}
	return p, nil
}

func (s *projectService) Get(ctx context.Context, who model.Principal, projectID uuid.UUID) (*model.Project, error) {
	return s.access.Authorize(ctx, projectID, who, ActionRead)
}

func (s *projectService) List(ctx context.Context, who model.Principal) ([]*model.Project, error) {
	if who == "" {
		return nil, apperr.Unauthorized("list projects", "missing principal")
	}
	items, err := s.r.ListForPrincipal(ctx, who)
	if err != nil {
		return nil, apperr.FromDB("list projects", err)
	}
	if items == nil {
		items = []*model.Project{}
	}
	return items, nil
}

func (s *projectService) Update(ctx context.Context, who model.Principal, projectID uuid.UUID, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.access.Authorize(ctx, projectID, who, ActionWrite)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.InvalidInput("update project", "name is empty")
		}
		fields["name"] = name
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.TemplateID != nil {
		fields["template_id"] = *in.TemplateID
	}
	if len(fields) == 0 {
		return p, nil
	}

	if err := s.r.Update(ctx, projectID, fields); err != nil {
		return nil, apperr.FromDB("update project", err)
	}
	p, err = s.r.Get(ctx, projectID)
	if err != nil {
		return nil, apperr.FromDB("get project", err)
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, who model.Principal, projectID uuid.UUID) error {
	p, err := s.access.Authorize(ctx, projectID, who, ActionAdmin)
	if err != nil {
		return err
	}

	removed, err := s.r.Delete(ctx, projectID)
	if err != nil {
		return apperr.FromDB("delete project", err)
	}

	// best effort, the rows are already gone
	for i := range removed {
		if err := s.chunks.PurgeBodies(ctx, &removed[i]); err != nil {
			s.log.Sugar().Warnw("purge chunk bodies", "project_id", projectID, "asset_id", removed[i].ID, "err", err)
		}
	}
	if p.PublishedVersionID != nil {
		if err := s.pages.Invalidate(ctx, p.URLSlug, *p.PublishedVersionID); err != nil {
			s.log.Sugar().Warnw("invalidate public page", "slug", p.URLSlug, "err", err)
		}
	}
	if err := s.pub.PublishJSON(ctx, mq.RoutingProjectDeleted, mq.ProjectDeleted{
		ProjectID: projectID.String(),
		Slug:      p.URLSlug,
	}); err != nil {
		s.log.Sugar().Warnw("publish project deleted", "project_id", projectID, "err", err)
	}

	s.log.Sugar().Infow("project deleted", "project_id", projectID, "assets", len(removed))
	return nil
}
