package landmark

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/middleware"
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
	lms := rg.Group("/landmarks", authMW)
	lms.GET("", h.list)
	lms.POST("", h.create)
	lms.GET("/:id", h.get)
	lms.PUT("/:id", h.update)
	lms.PATCH("/:id", h.update)
	lms.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	visited, err := params.OptionalBool(c, "visited")
	if err != nil {
		response.Error(c, err)
		return
	}
	lms, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), Filter{
		Category: c.Query("category"),
		Visited:  visited,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lms)
}

func (h *Handler) get(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	lm, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lm)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateLandmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	lm, err := h.svc.Create(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lm)
}

func (h *Handler) update(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var dto UpdateLandmarkDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	lm, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lm)
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
	response.NoContent(c)
}
