package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/modules/model"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/modules/service"
	"github.com/memodb-io/sitestore/internal/pkg/apperr"
)

type ProjectHandler struct {
	svc     service.ProjectService
	access  service.AccessService
	publish service.PublishService
}

func NewProjectHandler(s service.ProjectService, access service.AccessService, publish service.PublishService) *ProjectHandler {
	return &ProjectHandler{
		svc:     s,
		access:  access,
		publish: publish,
	}
}

type CreateProjectReq struct {
	Name        string  `json:"name" binding:"required" example:"My landing page"`
	Description string  `json:"description" example:"Spring campaign"`
	TemplateID  *string `json:"template_id" example:"tpl-blank"`
}

// CreateProject godoc
//
//	@Summary		Create project
//	@Description	Create a new project owned by the calling principal
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateProjectReq	true	"CreateProject payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.ProjectView}
//	@Router			/project [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req := CreateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), principal(c), service.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		TemplateID:  req.TemplateID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: model.NewProjectView(p)})
}

// ListProjects godoc
//
//	@Summary		List projects
//	@Description	List the projects the caller owns or collaborates on, newest first
//	@Tags			project
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.ProjectView}
//	@Router			/project [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), principal(c))
	if err != nil {
		writeErr(c, err)
		return
	}

	views := make([]model.ProjectView, 0, len(items))
	for _, p := range items {
		views = append(views, model.NewProjectView(p))
	}
	c.JSON(http.StatusOK, serializer.Response{Data: views})
}

// GetProject godoc
//
//	@Summary		Get project
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.ProjectView}
//	@Router			/project/{project_id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), principal(c), projectID)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: model.NewProjectView(p)})
}

type UpdateProjectReq struct {
	Name        *string `json:"name" example:"Renamed"`
	Description *string `json:"description"`
	TemplateID  *string `json:"template_id"`
}

// UpdateProject godoc
//
//	@Summary		Update project
//	@Description	Update name, description or template. Omitted fields are left unchanged.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.UpdateProjectReq	true	"UpdateProject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.ProjectView}
//	@Router			/project/{project_id} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := UpdateProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), principal(c), projectID, service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		TemplateID:  req.TemplateID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: model.NewProjectView(p)})
}

// DeleteProject godoc
//
//	@Summary		Delete project
//	@Description	Delete a project with all of its versions, assets and chunks. Owner only.
//	@Tags			project
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/project/{project_id} [delete]
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), principal(c), projectID); err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{})
}

type SetProjectAccessReq struct {
	Principals []model.Principal `json:"principals" swaggertype:"array,string" example:"bob,carol"`
}

type SetProjectAccessResp struct {
	Updated bool `json:"updated"`
}

// SetProjectAccess godoc
//
//	@Summary		Set project access
//	@Description	Replace the collaborator set. Reports updated=false for an unknown project or a caller that is not the owner.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.SetProjectAccessReq	true	"SetProjectAccess payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.SetProjectAccessResp}
//	@Router			/project/{project_id}/access [put]
func (h *ProjectHandler) SetProjectAccess(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := SetProjectAccessReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	updated := h.access.SetProjectAccess(c.Request.Context(), projectID, principal(c), req.Principals)
	c.JSON(http.StatusOK, serializer.Response{Data: SetProjectAccessResp{Updated: updated}})
}

type PublishProjectReq struct {
	Publish *bool `json:"publish" example:"true"`
}

// PublishProject godoc
//
//	@Summary		Publish or unpublish project
//	@Description	Publishing pins the current version under the public path. Both directions are idempotent.
//	@Tags			project
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string						true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.PublishProjectReq	true	"PublishProject payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.ProjectView}
//	@Router			/project/{project_id}/publish [post]
func (h *ProjectHandler) PublishProject(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := PublishProjectReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	if req.Publish == nil {
		writeErr(c, apperr.InvalidInput("publish project", "publish is required"))
		return
	}

	p, err := h.publish.PublishProject(c.Request.Context(), principal(c), projectID, *req.Publish)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: model.NewProjectView(p)})
}
