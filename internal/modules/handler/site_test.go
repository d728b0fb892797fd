package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSiteHandler_SaveSite(t *testing.T) {
	projectID := uuid.New()
	out := &service.SaveSiteOutput{
		Version: &model.ProjectVersion{ProjectID: projectID, ID: model.VersionID(5)},
		Assets:  []*model.Asset{createTestAsset(projectID)},
	}

	svc := &MockSiteService{}
	svc.On("Save", mock.Anything, model.Principal("alice"), projectID, service.SaveSiteInput{
		Site:        types.Site{HTML: "<p>x</p>", CSS: "p{}"},
		Description: "draft",
	}).Return(out, nil)
	h := NewSiteHandler(svc, &MockPublishService{})

	router := setupRouter("alice")
	router.POST("/project/:project_id/site", h.SaveSite)

	req := httptest.NewRequest(http.MethodPost, "/project/"+projectID.String()+"/site",
		strings.NewReader(`{"html":"<p>x</p>","css":"p{}","description":"draft"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "00000000000000000005", data["version"].(map[string]interface{})["id"])
	assert.Len(t, data["assets"], 1)
	svc.AssertExpectations(t)
}

func TestSiteHandler_LoadSite(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name           string
		query          string
		setup          func(*MockSiteService)
		expectedStatus int
	}{
		{
			name: "current version",
			setup: func(svc *MockSiteService) {
				out := &service.LoadSiteOutput{VersionID: model.VersionID(7)}
				out.HTML = "<p>x</p>"
				svc.On("Load", mock.Anything, model.Principal("alice"), projectID, "").Return(out, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "explicit version",
			query: "?version_id=00000000000000000003",
			setup: func(svc *MockSiteService) {
				svc.On("Load", mock.Anything, model.Principal("alice"), projectID, "00000000000000000003").
					Return(&service.LoadSiteOutput{VersionID: "00000000000000000003"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "unknown version",
			query: "?version_id=00000000000000000009",
			setup: func(svc *MockSiteService) {
				svc.On("Load", mock.Anything, model.Principal("alice"), projectID, "00000000000000000009").
					Return(nil, apperr.NotFound("load site", "no such version"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "partially written",
			setup: func(svc *MockSiteService) {
				svc.On("Load", mock.Anything, model.Principal("alice"), projectID, "").
					Return(nil, apperr.Incomplete("load site", "chunk missing"))
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockSiteService{}
			tt.setup(svc)
			h := NewSiteHandler(svc, &MockPublishService{})

			router := setupRouter("alice")
			router.GET("/project/:project_id/site", h.LoadSite)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/project/"+projectID.String()+"/site"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				data := decodeResponse(t, w)["data"].(map[string]interface{})
				assert.Contains(t, data, "version_id")
				assert.Contains(t, data, "html")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestSiteHandler_PublicPage(t *testing.T) {
	pub := &MockPublishService{}
	pub.On("RenderPublic", mock.Anything, "landing-abc123").Return([]byte("<html><body>hi</body></html>"), nil)
	pub.On("RenderPublic", mock.Anything, "hidden").Return(nil, apperr.NotFound("render public", "not published"))
	h := NewSiteHandler(&MockSiteService{}, pub)

	router := setupRouter("")
	router.GET("/p/:slug", h.PublicPage)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p/landing-abc123", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "<html><body>hi</body></html>", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p/hidden", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not Found", w.Body.String())

	pub.AssertExpectations(t)
}
