package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/infra/cache"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	"go.uber.org/zap"
)

type PublishService interface {
	// PublishProject toggles public visibility. Publishing pins the current
	// version; repeating either transition is a no-op.
	PublishProject(ctx context.Context, who model.Principal, projectID uuid.UUID, publish bool) (*model.Project, error)
	// RenderPublic returns the published page of slug with css and js inlined.
	RenderPublic(ctx context.Context, slug string) ([]byte, error)
}

type publishService struct {
	projects  repo.ProjectRepo
	assets    repo.AssetRepo
	chunks    repo.ChunkRepo
	access    AccessService
	pages     cache.PageCache
	pub       mq.Publisher
	strategy  editor.SelectStrategy
	chunkSize int
	log       *zap.Logger
}

func NewPublishService(
	projects repo.ProjectRepo,
	assets repo.AssetRepo,
	chunks repo.ChunkRepo,
	access AccessService,
	pages cache.PageCache,
	pub mq.Publisher,
	strategy editor.SelectStrategy,
	chunkSize int,
	log *zap.Logger,
) PublishService {
	return &publishService{
		projects:  projects,
		assets:    assets,
		chunks:    chunks,
		access:    access,
		pages:     pages,
		pub:       pub,
		strategy:  strategy,
		chunkSize: chunkSize,
		log:       log,
	}
}

func (s *publishService) PublishProject(ctx context.Context, who model.Principal, projectID uuid.UUID, publish bool) (*model.Project, error) {
	const op = "publish project"

	p, err := s.access.Authorize(ctx, projectID, who, ActionWrite)
	if err != nil {
		return nil, err
	}

	prev := p.PublishedVersionID
	var pin *string
	if publish {
		if p.CurrentVersionID == nil {
			return nil, apperr.InvalidInput(op, "project %s has no saved version", projectID)
		}
		if p.Published && p.PublishedVersionID != nil && *p.PublishedVersionID == *p.CurrentVersionID {
			return p, nil
		}
		v := *p.CurrentVersionID
		pin = &v
	} else if !p.Published && p.PublishedVersionID == nil {
		return p, nil
	}

	if err := s.projects.SetPublished(ctx, projectID, publish, pin); err != nil {
		return nil, apperr.FromDB(op, err)
	}
	p, err = s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, apperr.FromDB(op, err)
	}

	if prev != nil {
		if err := s.pages.Invalidate(ctx, p.URLSlug, *prev); err != nil {
			s.log.Sugar().Warnw("invalidate public page", "slug", p.URLSlug, "err", err)
		}
	}
	if err := s.pub.PublishJSON(ctx, mq.RoutingProjectPublished, mq.ProjectPublished{
		ProjectID: projectID.String(),
		Slug:      p.URLSlug,
		Published: p.Published,
		VersionID: p.PublishedVersionID,
	}); err != nil {
		s.log.Sugar().Warnw("publish project published", "project_id", projectID, "err", err)
	}

	s.log.Sugar().Infow("publish state changed", "project_id", projectID, "published", publish, "version_id", pin)
	return p, nil
}

func (s *publishService) RenderPublic(ctx context.Context, slug string) ([]byte, error) {
	const op = "render public page"

	// The project row decides visibility; the cache only holds bodies of a
	// pinned version.
	p, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.FromDB(op, err)
	}
	if !p.Published || p.PublishedVersionID == nil {
		return nil, apperr.NotFound(op, "no published site at %q", slug)
	}
	pin := *p.PublishedVersionID

	if page, ok, err := s.pages.Get(ctx, slug, pin); err != nil {
		s.log.Sugar().Warnw("read public page cache", "slug", slug, "err", err)
	} else if ok {
		return page, nil
	}

	assets, err := s.assets.ListByVersion(ctx, p.ID, pin)
	if err != nil {
		return nil, apperr.FromDB(op, err)
	}
	site, err := assembleSite(ctx, s.chunks, s.chunkSize, s.strategy, assets)
	if err != nil {
		return nil, err
	}
	page := editor.ComposePage(site.HTML, site.CSS, site.JS)

	if err := s.pages.Set(ctx, slug, pin, page); err != nil {
		s.log.Sugar().Warnw("write public page cache", "slug", slug, "err", err)
	}
	return page, nil
}
