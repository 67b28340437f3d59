package planitem

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
	rg.GET("/planItems", authMW, h.list)
}

func (h *Handler) list(c *gin.Context) {
	planID, err := params.QueryID(c, "planId")
	if err != nil {
		response.Error(c, err)
		return
	}
	visited, err := params.OptionalBool(c, "visited")
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.svc.ListItems(c.Request.Context(), middleware.CurrentUserID(c), planID, visited)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rows)
}
