package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/repo"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepo is a mock implementation of repo.ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Get(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) GetBySlug(ctx context.Context, slug string) (*model.Project, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) ListForPrincipal(ctx context.Context, principal model.Principal) ([]*model.Project, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, projectID uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, projectID, fields)
	return args.Error(0)
}

func (m *MockProjectRepo) ReplaceCollaborators(ctx context.Context, projectID uuid.UUID, principals []model.Principal) error {
	args := m.Called(ctx, projectID, principals)
	return args.Error(0)
}

func (m *MockProjectRepo) SetPublished(ctx context.Context, projectID uuid.UUID, published bool, versionID *string) error {
	args := m.Called(ctx, projectID, published, versionID)
	return args.Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, projectID uuid.UUID) ([]model.Asset, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Asset), args.Error(1)
}

// MockChunkRepo is a mock implementation of repo.ChunkRepo
type MockChunkRepo struct {
	mock.Mock
}

func (m *MockChunkRepo) Put(ctx context.Context, a *model.Asset, index int, data []byte) error {
	args := m.Called(ctx, a, index, data)
	return args.Error(0)
}

func (m *MockChunkRepo) Get(ctx context.Context, a *model.Asset, index int) ([]byte, error) {
	args := m.Called(ctx, a, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockChunkRepo) Stats(ctx context.Context, assetIDs []uuid.UUID) (map[uuid.UUID]repo.ChunkStat, error) {
	args := m.Called(ctx, assetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]repo.ChunkStat), args.Error(1)
}

func (m *MockChunkRepo) PurgeBodies(ctx context.Context, a *model.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockPageCache is a mock implementation of cache.PageCache
type MockPageCache struct {
	mock.Mock
}

func (m *MockPageCache) Get(ctx context.Context, slug, versionID string) ([]byte, bool, error) {
	args := m.Called(ctx, slug, versionID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockPageCache) Set(ctx context.Context, slug, versionID string, page []byte) error {
	args := m.Called(ctx, slug, versionID, page)
	return args.Error(0)
}

func (m *MockPageCache) Invalidate(ctx context.Context, slug, versionID string) error {
	args := m.Called(ctx, slug, versionID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of queue.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, routingKey string, data interface{}) error {
	args := m.Called(ctx, routingKey, data)
	return args.Error(0)
}

// MockAssetService is a mock implementation of AssetService
type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) StoreAssetMetadata(ctx context.Context, who model.Principal, projectID uuid.UUID, in types.AssetIn) (*model.Asset, error) {
	args := m.Called(ctx, who, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) StoreAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int, data []byte) error {
	args := m.Called(ctx, who, assetID, index, data)
	return args.Error(0)
}

func (m *MockAssetService) GetAssetMetadata(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, error) {
	args := m.Called(ctx, who, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Asset), args.Error(1)
}

func (m *MockAssetService) GetAssetChunk(ctx context.Context, who model.Principal, assetID uuid.UUID, index int) ([]byte, error) {
	args := m.Called(ctx, who, assetID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAssetService) GetProjectAssets(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.Asset, error) {
	args := m.Called(ctx, who, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Asset), args.Error(1)
}

func (m *MockAssetService) GetVersionAssets(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) ([]*model.Asset, error) {
	args := m.Called(ctx, who, projectID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Asset), args.Error(1)
}

func (m *MockAssetService) DeleteAsset(ctx context.Context, who model.Principal, assetID uuid.UUID) error {
	args := m.Called(ctx, who, assetID)
	return args.Error(0)
}

func (m *MockAssetService) GetAssetContent(ctx context.Context, who model.Principal, assetID uuid.UUID) (*model.Asset, []byte, error) {
	args := m.Called(ctx, who, assetID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Asset), args.Get(1).([]byte), args.Error(2)
}

func (m *MockAssetService) Sweep(ctx context.Context, projectID uuid.UUID) (int, error) {
	args := m.Called(ctx, projectID)
	return args.Int(0), args.Error(1)
}
