package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
	"github.com/memodb-io/sitestore/internal/pkg/types"
)

type AssetHandler struct {
	svc service.AssetService
}

func NewAssetHandler(s service.AssetService) *AssetHandler {
	return &AssetHandler{svc: s}
}

// StoreAssetMetadata godoc
//
//	@Summary		Store asset metadata
//	@Description	Register an asset under a version before any of its chunks are written
//	@Tags			asset
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string			true	"Project ID"	Format(uuid)
//	@Param			payload		body	types.AssetIn	true	"Asset metadata"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Asset}
//	@Router			/project/{project_id}/asset [post]
func (h *AssetHandler) StoreAssetMetadata(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := types.AssetIn{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	a, err := h.svc.StoreAssetMetadata(c.Request.Context(), principal(c), projectID, req)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: a})
}

func chunkIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeErr(c, apperr.Wrap(apperr.KindInvalidInput, "parse index", err))
		return 0, false
	}
	return index, true
}

// StoreAssetChunk godoc
//
//	@Summary		Store asset chunk
//	@Description	Write one chunk of an asset body. Rewriting an index overwrites it.
//	@Tags			asset
//	@Accept			application/octet-stream
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Param			index		path	integer	true	"Chunk index"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/asset/{asset_id}/chunk/{index} [put]
func (h *AssetHandler) StoreAssetChunk(c *gin.Context) {
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	index, ok := chunkIndex(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, serializer.Err(http.StatusRequestEntityTooLarge, "read chunk body", err))
			return
		}
		writeErr(c, apperr.Wrap(apperr.KindInvalidInput, "read chunk body", err))
		return
	}

	if err := h.svc.StoreAssetChunk(c.Request.Context(), principal(c), assetID, index, data); err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// GetAssetMetadata godoc
//
//	@Summary		Get asset metadata
//	@Tags			asset
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Asset}
//	@Router			/asset/{asset_id} [get]
func (h *AssetHandler) GetAssetMetadata(c *gin.Context) {
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}

	a, err := h.svc.GetAssetMetadata(c.Request.Context(), principal(c), assetID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: a})
}

// GetAssetChunk godoc
//
//	@Summary		Get asset chunk
//	@Description	Read one chunk as raw bytes. An unwritten index is 404.
//	@Tags			asset
//	@Produce		application/octet-stream
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Param			index		path	integer	true	"Chunk index"
//	@Security		BearerAuth
//	@Success		200	{file}	binary
//	@Router			/asset/{asset_id}/chunk/{index} [get]
func (h *AssetHandler) GetAssetChunk(c *gin.Context) {
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}
	index, ok := chunkIndex(c)
	if !ok {
		return
	}

	b, err := h.svc.GetAssetChunk(c.Request.Context(), principal(c), assetID, index)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.Data(http.StatusOK, "application/octet-stream", b)
}

// GetAssetContent godoc
//
//	@Summary		Get asset content
//	@Description	Reconstruct the full asset body. Missing chunks are reported as 409.
//	@Tags			asset
//	@Produce		octet-stream
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{file}	binary
//	@Router			/asset/{asset_id}/content [get]
func (h *AssetHandler) GetAssetContent(c *gin.Context) {
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}

	a, b, err := h.svc.GetAssetContent(c.Request.Context(), principal(c), assetID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.Data(http.StatusOK, a.ContentType, b)
}

// GetProjectAssets godoc
//
//	@Summary		List project assets
//	@Description	All assets of the project across versions, in creation order
//	@Tags			asset
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Asset}
//	@Router			/project/{project_id}/asset [get]
func (h *AssetHandler) GetProjectAssets(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	items, err := h.svc.GetProjectAssets(c.Request.Context(), principal(c), projectID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: nonNil(items)})
}

// GetVersionAssets godoc
//
//	@Summary		List version assets
//	@Tags			asset
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			version_id	path	string	true	"Version ID"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Asset}
//	@Router			/project/{project_id}/version/{version_id}/asset [get]
func (h *AssetHandler) GetVersionAssets(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	items, err := h.svc.GetVersionAssets(c.Request.Context(), principal(c), projectID, c.Param("version_id"))
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: nonNil(items)})
}

// DeleteAsset godoc
//
//	@Summary		Delete asset
//	@Description	Delete an asset with all of its chunks
//	@Tags			asset
//	@Produce		json
//	@Param			asset_id	path	string	true	"Asset ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/asset/{asset_id} [delete]
func (h *AssetHandler) DeleteAsset(c *gin.Context) {
	assetID, ok := uuidParam(c, "asset_id")
	if !ok {
		return
	}

	if err := h.svc.DeleteAsset(c.Request.Context(), principal(c), assetID); err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

// nonNil keeps empty listings encoded as [] rather than omitted.
func nonNil(items []*model.Asset) []*model.Asset {
	if items == nil {
		return []*model.Asset{}
	}
	return items
}
