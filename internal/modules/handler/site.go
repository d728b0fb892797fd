package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/memodb-io/sitestore/internal/modules/serializer"
	"github.com/memodb-io/sitestore/internal/modules/service"
)

type SiteHandler struct {
	svc     service.SiteService
	publish service.PublishService
}

func NewSiteHandler(s service.SiteService, publish service.PublishService) *SiteHandler {
	return &SiteHandler{svc: s, publish: publish}
}

type SaveSiteReq struct {
	HTML        string `json:"html" example:"<h1>Hello</h1>"`
	CSS         string `json:"css" example:"h1 { color: red; }"`
	JS          string `json:"js"`
	Description string `json:"description"`
}

// SaveSite godoc
//
//	@Summary		Save site
//	@Description	Save the editor's html, css and js as a new version
//	@Tags			site
//	@Accept			json
//	@Produce		json
//	@Param			project_id	path	string				true	"Project ID"	Format(uuid)
//	@Param			payload		body	handler.SaveSiteReq	true	"SaveSite payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=service.SaveSiteOutput}
//	@Router			/project/{project_id}/site [post]
func (h *SiteHandler) SaveSite(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}
	req := SaveSiteReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}

	in := service.SaveSiteInput{Description: req.Description}
	in.HTML, in.CSS, in.JS = req.HTML, req.CSS, req.JS

	out, err := h.svc.Save(c.Request.Context(), principal(c), projectID, in)
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: out})
}

// LoadSite godoc
//
//	@Summary		Load site
//	@Description	Load the editor blobs of a version, the current one by default
//	@Tags			site
//	@Produce		json
//	@Param			project_id	path	string	true	"Project ID"	Format(uuid)
//	@Param			version_id	query	string	false	"Version ID, defaults to the current version"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.LoadSiteOutput}
//	@Router			/project/{project_id}/site [get]
func (h *SiteHandler) LoadSite(c *gin.Context) {
	projectID, ok := uuidParam(c, "project_id")
	if !ok {
		return
	}

	out, err := h.svc.Load(c.Request.Context(), principal(c), projectID, c.Query("version_id"))
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// PublicPage godoc
//
//	@Summary		Public page
//	@Description	Serve the published version of a site as a single html page
//	@Tags			site
//	@Produce		html
//	@Param			slug	path	string	true	"Project url slug"
//	@Success		200	{string}	string	"html page"
//	@Router			/p/{slug} [get]
func (h *SiteHandler) PublicPage(c *gin.Context) {
	page, err := h.publish.RenderPublic(c.Request.Context(), c.Param("slug"))
	if err != nil {
		status, _ := serializer.FromError(err)
		c.Data(status, "text/plain; charset=utf-8", []byte(http.StatusText(status)))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
