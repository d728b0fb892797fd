package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	mq "github.com/memodb-io/sitestore/internal/infra/queue"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SiteService is the save/load boundary of the editing surface.
type SiteService interface {
	// Save mints a version and writes each non-empty blob as a chunked
	// asset. A failed save may leave a version with incomplete assets.
	Save(ctx context.Context, who model.Principal, projectID uuid.UUID, in SaveSiteInput) (*SaveSiteOutput, error)
	// Load reassembles the editor blobs of versionID, or of the current
	// version when versionID is empty.
	Load(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) (*LoadSiteOutput, error)
}

type SaveSiteInput struct {
	types.Site
	Description string `json:"description"`
}

type SaveSiteOutput struct {
	Version *model.ProjectVersion `json:"version"`
	Assets  []*model.Asset        `json:"assets"`
}

type LoadSiteOutput struct {
	// empty for a project that was never saved
	VersionID string `json:"version_id"`
	types.Site
}

type siteService struct {
	access    AccessService
	versions  VersionService
	assets    AssetService
	vr        repo.VersionRepo
	ar        repo.AssetRepo
	chunks    repo.ChunkRepo
	strategy  editor.SelectStrategy
	chunkSize int
	// nil runs the sweep inline after each save
	pub mq.Publisher
	log *zap.Logger
}

func NewSiteService(
	access AccessService,
	versions VersionService,
	assets AssetService,
	vr repo.VersionRepo,
	ar repo.AssetRepo,
	chunks repo.ChunkRepo,
	strategy editor.SelectStrategy,
	chunkSize int,
	pub mq.Publisher,
	log *zap.Logger,
) SiteService {
	return &siteService{
		access:    access,
		versions:  versions,
		assets:    assets,
		vr:        vr,
		ar:        ar,
		chunks:    chunks,
		strategy:  strategy,
		chunkSize: chunkSize,
		pub:       pub,
		log:       log,
	}
}

func (s *siteService) Save(ctx context.Context, who model.Principal, projectID uuid.UUID, in SaveSiteInput) (*SaveSiteOutput, error) {
	v, err := s.versions.CreateVersion(ctx, who, projectID, in.Description)
	if err != nil {
		return nil, err
	}

	blobs := map[model.AssetType]string{
		model.AssetTypeHTML:       in.HTML,
		model.AssetTypeCSS:        in.CSS,
		model.AssetTypeJavaScript: in.JS,
	}
	out := &SaveSiteOutput{Version: v, Assets: make([]*model.Asset, 0, len(blobs))}

	for _, t := range model.EditorAssetTypes {
		body := []byte(blobs[t])
		if len(body) == 0 {
			continue
		}
		cfg := t.Config()
		a, err := s.assets.StoreAssetMetadata(ctx, who, projectID, types.AssetIn{
			Filename:    cfg.Filename,
			ContentType: cfg.ContentType,
			Size:        int64(len(body)),
			VersionID:   v.ID,
			AssetType:   string(t),
			Path:        cfg.Path,
		})
		if err != nil {
			s.log.Sugar().Warnw("save failed", "project_id", projectID, "version_id", v.ID, "asset_type", t, "err", err)
			return nil, err
		}
		for i, chunk := range editor.Split(body, s.chunkSize) {
			if err := s.assets.StoreAssetChunk(ctx, who, a.ID, i, chunk); err != nil {
				s.log.Sugar().Warnw("save failed", "project_id", projectID, "version_id", v.ID, "asset_id", a.ID, "chunk", i, "err", err)
				return nil, err
			}
		}
		out.Assets = append(out.Assets, a)
	}

	s.afterSave(ctx, projectID, v.ID, len(out.Assets))
	return out, nil
}

func (s *siteService) afterSave(ctx context.Context, projectID uuid.UUID, versionID string, n int) {
	if s.pub == nil {
		if _, err := s.assets.Sweep(ctx, projectID); err != nil {
			s.log.Sugar().Warnw("inline sweep", "project_id", projectID, "err", err)
		}
		return
	}
	if err := s.pub.PublishJSON(ctx, mq.RoutingSaveCompleted, mq.SaveCompleted{
		ProjectID: projectID.String(),
		VersionID: versionID,
		Assets:    n,
	}); err != nil {
		s.log.Sugar().Warnw("publish save completed", "project_id", projectID, "err", err)
	}
}

func (s *siteService) Load(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) (*LoadSiteOutput, error) {
	p, err := s.access.Authorize(ctx, projectID, who, ActionRead)
	if err != nil {
		return nil, err
	}

	if versionID == "" {
		if p.CurrentVersionID == nil {
			return &LoadSiteOutput{}, nil
		}
		versionID = *p.CurrentVersionID
	} else if _, err := s.vr.Get(ctx, projectID, versionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("load site", "version %s of project %s", versionID, projectID)
		}
		return nil, apperr.Transport("load site", err)
	}

	assets, err := s.ar.ListByVersion(ctx, projectID, versionID)
	if err != nil {
		return nil, apperr.FromDB("load site", err)
	}
	site, err := assembleSite(ctx, s.chunks, s.chunkSize, s.strategy, assets)
	if err != nil {
		return nil, err
	}
	return &LoadSiteOutput{VersionID: versionID, Site: site}, nil
}

// assembleSite picks one asset per editor type and reconstructs it. Types
// without an asset stay empty.
func assembleSite(ctx context.Context, chunks repo.ChunkRepo, chunkSize int, strategy editor.SelectStrategy, assets []*model.Asset) (types.Site, error) {
	var site types.Site
	for t, a := range editor.SelectPerType(strategy, assets) {
		b, err := readAsset(ctx, chunks, chunkSize, a)
		if err != nil {
			return types.Site{}, fmt.Errorf("%s asset: %w", t, err)
		}
		switch t {
		case model.AssetTypeHTML:
			site.HTML = string(b)
		case model.AssetTypeCSS:
			site.CSS = string(b)
		case model.AssetTypeJavaScript:
			site.JS = string(b)
		}
	}
	return site, nil
}
