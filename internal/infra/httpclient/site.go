package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/editor"
	"github.com/memodb-io/sitestore/internal/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Project mirrors the project view returned by the API.
type Project struct {
	model.Project
	Collaborators []model.Principal `json:"collaborators"`
}

// LoadedSite is the editor state of one version. VersionID is empty for a
// project that was never saved.
type LoadedSite struct {
	VersionID string `json:"version_id"`
	types.Site
}

type SavedSite struct {
	Version *model.ProjectVersion `json:"version"`
	Assets  []*model.Asset        `json:"assets"`
}

func projectPath(projectID uuid.UUID) string { return "/api/v1/project/" + projectID.String() }
func assetPath(assetID uuid.UUID) string     { return "/api/v1/asset/" + assetID.String() }

func (c *Client) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	return doJSON[*Project](ctx, c, "create project", http.MethodPost, "/api/v1/project", map[string]string{
		"name":        name,
		"description": description,
	})
}

func (c *Client) ListProjects(ctx context.Context) ([]*Project, error) {
	return doJSON[[]*Project](ctx, c, "list projects", http.MethodGet, "/api/v1/project", nil)
}

func (c *Client) GetProject(ctx context.Context, projectID uuid.UUID) (*Project, error) {
	return doJSON[*Project](ctx, c, "get project", http.MethodGet, projectPath(projectID), nil)
}

func (c *Client) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	_, err := doJSON[struct{}](ctx, c, "delete project", http.MethodDelete, projectPath(projectID), nil)
	return err
}

func (c *Client) SetProjectAccess(ctx context.Context, projectID uuid.UUID, principals []string) (bool, error) {
	res, err := doJSON[struct {
		Updated bool `json:"updated"`
	}](ctx, c, "set project access", http.MethodPut, projectPath(projectID)+"/access", map[string][]string{
		"principals": principals,
	})
	return res.Updated, err
}

func (c *Client) PublishProject(ctx context.Context, projectID uuid.UUID, publish bool) (*Project, error) {
	return doJSON[*Project](ctx, c, "publish project", http.MethodPost, projectPath(projectID)+"/publish", map[string]bool{
		"publish": publish,
	})
}

func (c *Client) CreateVersion(ctx context.Context, projectID uuid.UUID, description string) (*model.ProjectVersion, error) {
	return doJSON[*model.ProjectVersion](ctx, c, "create version", http.MethodPost, projectPath(projectID)+"/version", map[string]string{
		"description": description,
	})
}

func (c *Client) GetProjectVersions(ctx context.Context, projectID uuid.UUID) ([]*model.ProjectVersion, error) {
	return doJSON[[]*model.ProjectVersion](ctx, c, "get project versions", http.MethodGet, projectPath(projectID)+"/version", nil)
}

func (c *Client) StoreAssetMetadata(ctx context.Context, projectID uuid.UUID, in types.AssetIn) (*model.Asset, error) {
	return doJSON[*model.Asset](ctx, c, "store asset metadata", http.MethodPost, projectPath(projectID)+"/asset", in)
}

func (c *Client) StoreAssetChunk(ctx context.Context, assetID uuid.UUID, index int, data []byte) error {
	_, _, err := c.do(ctx, "store asset chunk", http.MethodPut,
		assetPath(assetID)+"/chunk/"+strconv.Itoa(index), bytes.NewReader(data), "application/octet-stream")
	return err
}

func (c *Client) GetAssetMetadata(ctx context.Context, assetID uuid.UUID) (*model.Asset, error) {
	return doJSON[*model.Asset](ctx, c, "get asset metadata", http.MethodGet, assetPath(assetID), nil)
}

func (c *Client) GetAssetChunk(ctx context.Context, assetID uuid.UUID, index int) ([]byte, error) {
	b, _, err := c.do(ctx, "get asset chunk", http.MethodGet, assetPath(assetID)+"/chunk/"+strconv.Itoa(index), nil, "")
	return b, err
}

// GetAssetContent returns the reconstructed body and its content type.
func (c *Client) GetAssetContent(ctx context.Context, assetID uuid.UUID) ([]byte, string, error) {
	return c.do(ctx, "get asset content", http.MethodGet, assetPath(assetID)+"/content", nil, "")
}

func (c *Client) GetProjectAssets(ctx context.Context, projectID uuid.UUID) ([]*model.Asset, error) {
	return doJSON[[]*model.Asset](ctx, c, "get project assets", http.MethodGet, projectPath(projectID)+"/asset", nil)
}

func (c *Client) GetVersionAssets(ctx context.Context, projectID uuid.UUID, versionID string) ([]*model.Asset, error) {
	return doJSON[[]*model.Asset](ctx, c, "get version assets", http.MethodGet,
		projectPath(projectID)+"/version/"+url.PathEscape(versionID)+"/asset", nil)
}

func (c *Client) DeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	_, err := doJSON[struct{}](ctx, c, "delete asset", http.MethodDelete, assetPath(assetID), nil)
	return err
}

// UploadAsset writes the metadata of an asset and then all of its chunks,
// at most Parallel at a time. The first failed chunk cancels the rest and the
// asset stays visible but incomplete.
func (c *Client) UploadAsset(ctx context.Context, projectID uuid.UUID, in types.AssetIn, data []byte) (*model.Asset, error) {
	if c.ChunkSize <= 0 {
		return nil, apperr.InvalidInput("upload asset", "chunk size must be positive")
	}
	in.Size = int64(len(data))

	a, err := c.StoreAssetMetadata(ctx, projectID, in)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if c.Parallel > 0 {
		g.SetLimit(c.Parallel)
	}
	for i, chunk := range editor.Split(data, c.ChunkSize) {
		i, chunk := i, chunk
		g.Go(func() error {
			if err := c.StoreAssetChunk(gctx, a.ID, i, chunk); err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return a, err
	}
	return a, nil
}

// DownloadAsset fetches chunks one by one and concatenates them. A chunk
// missing below the declared size is reported as incomplete.
func (c *Client) DownloadAsset(ctx context.Context, assetID uuid.UUID) (*model.Asset, []byte, error) {
	a, err := c.GetAssetMetadata(ctx, assetID)
	if err != nil {
		return nil, nil, err
	}
	var out []byte
	for i := 0; i < a.ChunkCount(c.ChunkSize); i++ {
		b, err := c.GetAssetChunk(ctx, assetID, i)
		if apperr.Is(err, apperr.KindNotFound) {
			return a, nil, apperr.Incomplete("download asset", "chunk %d of asset %s not written", i, assetID)
		}
		if err != nil {
			return a, nil, err
		}
		out = append(out, b...)
		if int64(len(out)) > a.Size {
			return a, nil, apperr.Incomplete("download asset", "asset %s holds more than its %d bytes", assetID, a.Size)
		}
	}
	if int64(len(out)) != a.Size {
		return a, nil, apperr.Incomplete("download asset", "asset %s has %d of %d bytes", assetID, len(out), a.Size)
	}
	return a, out, nil
}

func (c *Client) SaveSite(ctx context.Context, projectID uuid.UUID, site types.Site, description string) (*SavedSite, error) {
	return doJSON[*SavedSite](ctx, c, "save site", http.MethodPost, projectPath(projectID)+"/site", struct {
		types.Site
		Description string `json:"description"`
	}{site, description})
}

// LoadSite loads versionID, or the current version when it is empty.
func (c *Client) LoadSite(ctx context.Context, projectID uuid.UUID, versionID string) (*LoadedSite, error) {
	path := projectPath(projectID) + "/site"
	if versionID != "" {
		path += "?version_id=" + url.QueryEscape(versionID)
	}
	return doJSON[*LoadedSite](ctx, c, "load site", http.MethodGet, path, nil)
}
