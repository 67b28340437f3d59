package plan

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/middleware"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/params"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	plans := rg.Group("/plans")
	plans.GET("/suggestions", h.suggestions)

	authed := plans.Group("", authMW)
	authed.GET("", h.list)
	authed.POST("", h.create)
	authed.GET("/:id", h.get)
	authed.DELETE("/:id", h.delete)
	authed.GET("/:id/landmarks", h.landmarks)
	authed.GET("/:id/geojson", h.geojson)
}

func (h *Handler) list(c *gin.Context) {
	include := strings.EqualFold(c.Query("include"), "items")
	plans, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), include)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, plans)
}

func (h *Handler) get(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreatePlanDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(dto.Items) > 0 && len(dto.Landmarks) > 0 {
		response.Error(c, apperr.Validation("send either items or landmarks, not both"))
		return
	}

	ctx, userID := c.Request.Context(), middleware.CurrentUserID(c)
	var (
		result *CreateResult
		err    error
	)
	if len(dto.Landmarks) > 0 {
		result, err = h.svc.CreateFromLocations(ctx, userID, dto.Name, dto.Landmarks)
	} else {
		result, err = h.svc.CreateWithItems(ctx, userID, dto.Name, dto.Items)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *Handler) delete(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"id": id, "deleted": true})
}

func (h *Handler) landmarks(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	lms, err := h.svc.Landmarks(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lms)
}

func (h *Handler) geojson(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	fc, err := h.svc.GeoJSON(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, fc)
}

func (h *Handler) suggestions(c *gin.Context) {
	if strings.EqualFold(c.Query("random"), "true") {
		response.OK(c, gin.H{"name": RandomSuggestion()})
		return
	}
	response.OK(c, Suggestions())
}
