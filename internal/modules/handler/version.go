package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/modules/service"
)

type VersionHandler struct {
	svc service.VersionService
}

func NewVersionHandler(s service.VersionService) *VersionHandler {
	return &VersionHandler{svc: s}
}

type CreateVersionReq struct {
	Description string `json:"description" example:"before the redesign"`
}

// CreateVersion godoc
//
//	@Summary		Create version
//	@Description	Mint a new version and make it the project's current version
//	@Tags			version
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.CreateVersionReq	false	"CreateVersion payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.ProjectVersion}
//	@Router			/project/{project_id}/version [post]
func (h *VersionHandler) CreateVersion(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := CreateVersionReq{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
			return
		}
	}

	v, err := h.svc.CreateVersion(c.Request.Context(), principal(c), projectID, req.Description)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: v})
}

// GetProjectVersions godoc
//
//	@Summary		List versions
//	@Description	List the versions of a project, oldest first
//	@Tags			version
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.ProjectVersion}
//	@Router			/project/{project_id}/version [get]
func (h *VersionHandler) GetProjectVersions(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	items, err := h.svc.GetProjectVersions(c.Request.Context(), principal(c), projectID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: items})
}
