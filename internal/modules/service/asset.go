package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AssetService interface {
	StoreAssetMetadata(ctx context.Context, who model.Principal, projectID uuid.UUID, in types.AssetIn) (*model.Asset, error)
	StoreAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int, data []byte) error
	GetAssetMetadata(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, error)
	GetAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int) ([]byte, error)
	GetProjectAssets(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.Asset, error)
	GetVersionAssets(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) ([]*model.Asset, error)
	DeleteAsset(ctx context.Context, who model.Principal, assetID uuid.UUID) error
	// GetAssetContent reconstructs the full body. A gap is KindIncomplete.
	GetAssetContent(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, []byte, error)
	// Sweep deletes incomplete assets older than the sweep window that belong
	// to neither the current nor the published version. It returns how many
	// assets were removed.
	Sweep(ctx context.Context, projectID uuid.UUID) (int, error)
}

type StorageOptions struct {
	ChunkSize  int
	SweepAfter time.Duration
	// MaxAssetSize caps the declared size of an asset; 0 means no cap.
	MaxAssetSize int64
}

type assetService struct {
	access   AccessService
	projects repo.ProjectRepo
	assets   repo.AssetRepo
	versions repo.VersionRepo
	chunks   repo.ChunkRepo
	opts     StorageOptions
	log      *zap.Logger
	now      func() time.Time
}

func NewAssetService(access AccessService, projects repo.ProjectRepo, assets repo.AssetRepo, versions repo.VersionRepo, chunks repo.ChunkRepo, opts StorageOptions, log *zap.Logger) AssetService {
	return &assetService{
		access:   access,
		projects: projects,
		assets:   assets,
		versions: versions,
		chunks:   chunks,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

func (s *assetService) StoreAssetMetadata(ctx context.Context, who model.Principal, projectID uuid.UUID, in types.AssetIn) (*model.Asset, error) {
	const op = "store asset metadata"

	if in.Size < 0 {
		return nil, apperr.InvalidInput(op, "size must be >= 0, got %d", in.Size)
	}
	if s.opts.MaxAssetSize > 0 && in.Size > s.opts.MaxAssetSize {
		return nil, apperr.InvalidInput(op, "size %d exceeds the %d byte limit", in.Size, s.opts.MaxAssetSize)
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return nil, apperr.InvalidInput(op, "filename is empty")
	}
	at, err := model.ParseAssetType(in.AssetType)
	if err != nil {
		return nil, apperr.InvalidInput(op, "%s", err.Error())
	}
	if in.VersionID == "" {
		return nil, apperr.InvalidInput(op, "version_id is empty")
	}

	if _, err := s.access.Authorize(ctx, projectID, who, ActionWrite); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.InvalidInput(op, "project %s does not exist", projectID)
		}
		return nil, err
	}
	if _, err := s.versions.Get(ctx, projectID, in.VersionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidInput(op, "version %s does not exist in project %s", in.VersionID, projectID)
		}
		return nil, apperr.Transport(op, err)
	}

	cfg := at.Config()
	a := &model.Asset{
		ProjectID:   projectID,
		VersionID:   in.VersionID,
		Filename:    filename,
		Path:        in.Path,
		ContentType: in.ContentType,
		AssetType:   at,
		Size:        in.Size,
	}
	if a.Path == "" {
		a.Path = cfg.Path
	}
	if a.ContentType == "" {
		a.ContentType = cfg.ContentType
	}
	if len(in.Meta) > 0 {
		a.Meta = datatypes.JSONMap(in.Meta)
	}

	if err := s.assets.Create(ctx, a); err != nil {
		return nil, apperr.FromDB(op, err)
	}
	return a, nil
}

// authorizedAsset loads an asset and checks that who may act on its project.
func (s *assetService) authorizedAsset(ctx context.Context, who model.Principal, assetID uuid.UUID, act Action) (*model.Asset, *model.Project, error) {
	a, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return nil, nil, apperr.FromDB("get asset", err)
	}
	p, err := s.access.Authorize(ctx, a.ProjectID, who, act)
	if err != nil {
		return nil, nil, err
	}
	return a, p, nil
}

func (s *assetService) StoreAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int, data []byte) error {
	const op = "store asset chunk"

	a, _, err := s.authorizedAsset(ctx, who, assetID, ActionWrite)
	if err != nil {
		return err
	}
	if n := a.ChunkCount(s.opts.ChunkSize); index < 0 || index >= n {
		return apperr.InvalidInput(op, "chunk index %d out of range [0, %d)", index, n)
	}
	if limit := chunkLimit(a, index, s.opts.ChunkSize); int64(len(data)) > limit {
		return apperr.InvalidInput(op, "chunk %d of asset %s takes at most %d bytes, got %d", index, a.ID, limit, len(data))
	}

	if err := s.chunks.Put(ctx, a, index, data); err != nil {
		return apperr.Transport(op, err)
	}
	return nil
}

func (s *assetService) GetAssetMetadata(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, error) {
	a, _, err := s.authorizedAsset(ctx, who, assetID, ActionRead)
	return a, err
}

func (s *assetService) GetAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int) ([]byte, error) {
	a, _, err := s.authorizedAsset(ctx, who, assetID, ActionRead)
	if err != nil {
		return nil, err
	}
	b, err := s.chunks.Get(ctx, a, index)
	if err != nil {
		return nil, apperr.FromDB("get asset chunk", err)
	}
	return b, nil
}

func (s *assetService) GetProjectAssets(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.Asset, error) {
	if _, err := s.access.Authorize(ctx, projectID, who, ActionRead); err != nil {
		return nil, err
	}
	items, err := s.assets.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.FromDB("list project assets", err)
	}
	return items, nil
}

func (s *assetService) GetVersionAssets(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) ([]*model.Asset, error) {
	if _, err := s.access.Authorize(ctx, projectID, who, ActionRead); err != nil {
		return nil, err
	}
	items, err := s.assets.ListByVersion(ctx, projectID, versionID)
	if err != nil {
		return nil, apperr.FromDB("list version assets", err)
	}
	return items, nil
}

func (s *assetService) DeleteAsset(ctx context.Context, who model.Principal, assetID uuid.UUID) error {
	a, _, err := s.authorizedAsset(ctx, who, assetID, ActionWrite)
	if err != nil {
		return err
	}
	if _, err := s.assets.Delete(ctx, a.ID); err != nil {
		return apperr.FromDB("delete asset", err)
	}
	if err := s.chunks.PurgeBodies(ctx, a); err != nil {
		s.log.Sugar().Warnw("purge chunk bodies", "asset_id", a.ID, "err", err)
	}
	return nil
}

func (s *assetService) GetAssetContent(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, []byte, error) {
	a, _, err := s.authorizedAsset(ctx, who, assetID, ActionRead)
	if err != nil {
		return nil, nil, err
	}
	b, err := readAsset(ctx, s.chunks, s.opts.ChunkSize, a)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func (s *assetService) Sweep(ctx context.Context, projectID uuid.UUID) (int, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return 0, apperr.FromDB("sweep", err)
	}

	keep := make([]string, 0, 2)
	if p.CurrentVersionID != nil {
		keep = append(keep, *p.CurrentVersionID)
	}
	if p.PublishedVersionID != nil {
		keep = append(keep, *p.PublishedVersionID)
	}

	stale, err := s.assets.ListStale(ctx, projectID, keep, s.now().Add(-s.opts.SweepAfter))
	if err != nil {
		return 0, apperr.FromDB("sweep", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(stale))
	for _, a := range stale {
		ids = append(ids, a.ID)
	}
	stats, err := s.chunks.Stats(ctx, ids)
	if err != nil {
		return 0, apperr.FromDB("sweep", err)
	}

	removed := 0
	for _, a := range stale {
		if isComplete(a, stats[a.ID], s.opts.ChunkSize) {
			continue
		}
		if _, err := s.assets.Delete(ctx, a.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return removed, apperr.FromDB("sweep", err)
		}
		if err := s.chunks.PurgeBodies(ctx, a); err != nil {
			s.log.Sugar().Warnw("purge chunk bodies", "asset_id", a.ID, "err", err)
		}
		removed++
	}

	if removed > 0 {
		s.log.Sugar().Infow("swept incomplete assets", "project_id", projectID, "removed", removed)
	}
	return removed, nil
}

// chunkLimit is the length chunk index must not exceed: a full chunk, or what
// is left of the declared size for the last one.
func chunkLimit(a *model.Asset, index, chunkSize int) int64 {
	left := a.Size - int64(index)*int64(chunkSize)
	if left < int64(chunkSize) {
		return left
	}
	return int64(chunkSize)
}

func isComplete(a *model.Asset, st repo.ChunkStat, chunkSize int) bool {
	return st.Count == a.ChunkCount(chunkSize) && st.Bytes == a.Size
}

// readAsset concatenates chunks 0..chunk_count-1 of a.
func readAsset(ctx context.Context, chunks repo.ChunkRepo, chunkSize int, a *model.Asset) ([]byte, error) {
	const op = "reconstruct asset"

	n := a.ChunkCount(chunkSize)
	// grown by append; the declared size is not trusted for allocation
	var buf []byte
	for i := 0; i < n; i++ {
		b, err := chunks.Get(ctx, a, i)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Incomplete(op, "asset %s is missing chunk %d of %d", a.ID, i, n)
		}
		if err != nil {
			return nil, apperr.Transport(op, err)
		}
		buf = append(buf, b...)
		if int64(len(buf)) > a.Size {
			return nil, apperr.Incomplete(op, "asset %s holds more than its %d bytes", a.ID, a.Size)
		}
	}
	if int64(len(buf)) != a.Size {
		return nil, apperr.Incomplete(op, "asset %s has %d of %d bytes", a.ID, len(buf), a.Size)
	}
	return buf, nil
}
