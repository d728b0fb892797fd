package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/middleware"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"github.com/stretchr/testify/mock"
)

func setupRouter(who model.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, who)
		c.Next()
	})
	return r
}

// MockProjectService is a mock implementation of ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, who model.Principal, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, who, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, who model.Principal, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, who, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, who model.Principal) ([]*model.Project, error) {
	args := m.Called(ctx, who)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, who model.Principal, projectID uuid.UUID, in service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, who, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, who model.Principal, projectID uuid.UUID) error {
	args := m.Called(ctx, who, projectID)
	return args.Error(0)
}

// MockAccessService is a mock implementation of AccessService
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) Authorize(ctx context.Context, projectID uuid.UUID, who model.Principal, act service.Action) (*model.Project, error) {
	args := m.Called(ctx, projectID, who, act)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockAccessService) SetProjectAccess(ctx context.Context, projectID uuid.UUID, caller model.Principal, principals []model.Principal) bool {
	args := m.Called(ctx, projectID, caller, principals)
	return args.Bool(0)
}

// MockPublishService is a mock implementation of PublishService
type MockPublishService struct {
	mock.Mock
}

func (m *MockPublishService) PublishProject(ctx context.Context, who model.Principal, projectID uuid.UUID, publish bool) (*model.Project, error) {
	args := m.Called(ctx, who, projectID, publish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockPublishService) RenderPublic(ctx context.Context, slug string) ([]byte, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
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

// MockVersionService is a mock implementation of VersionService
type MockVersionService struct {
	mock.Mock
}

func (m *MockVersionService) CreateVersion(ctx context.Context, who model.Principal, projectID uuid.UUID, description string) (*model.ProjectVersion, error) {
	args := m.Called(ctx, who, projectID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProjectVersion), args.Error(1)
}

func (m *MockVersionService) GetProjectVersions(ctx context.Context, who model.Principal, projectID uuid.UUID) ([]*model.ProjectVersion, error) {
	args := m.Called(ctx, who, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ProjectVersion), args.Error(1)
}

// MockSiteService is a mock implementation of SiteService
type MockSiteService struct {
	mock.Mock
}

func (m *MockSiteService) Save(ctx context.Context, who model.Principal, projectID uuid.UUID, in service.SaveSiteInput) (*service.SaveSiteOutput, error) {
	args := m.Called(ctx, who, projectID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SaveSiteOutput), args.Error(1)
}

func (m *MockSiteService) Load(ctx context.Context, who model.Principal, projectID uuid.UUID, versionID string) (*service.LoadSiteOutput, error) {
	args := m.Called(ctx, who, projectID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoadSiteOutput), args.Error(1)
}
