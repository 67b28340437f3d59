package visit

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/middleware"
	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
	"github.com/wayfarer-labs/planner/internal/pkg/pagination"
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
	v := rg.Group("/visit", authMW)
	v.PATCH("", h.markLandmark)
	v.POST("", h.mark)
	v.PUT("", h.toggle)

	log := rg.Group("/visited", authMW)
	log.GET("", h.listLog)
	log.POST("", h.createLog)
	log.DELETE("/:id", h.deleteLog)
}

func bindVisit(c *gin.Context) (*VisitRequest, bool) {
	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return nil, false
	}
	return &req, true
}

func (h *Handler) markLandmark(c *gin.Context) {
	req, ok := bindVisit(c)
	if !ok {
		return
	}
	if req.LandmarkID == 0 {
		response.Error(c, apperr.Validation("landmarkId is required"))
		return
	}
	res, err := h.svc.MarkLandmarkVisited(c.Request.Context(), middleware.CurrentUserID(c), uint(req.LandmarkID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) mark(c *gin.Context) {
	req, ok := bindVisit(c)
	if !ok {
		return
	}
	ctx, userID := c.Request.Context(), middleware.CurrentUserID(c)
	switch {
	case req.PlanItemID != 0:
		item, err := h.svc.MarkItemVisited(ctx, userID, uint(req.PlanItemID))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, item)
	case req.PlanID != 0:
		res, err := h.svc.MarkPlanVisited(ctx, userID, uint(req.PlanID))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, res)
	default:
		response.Error(c, apperr.Validation("planItemId or plan_id is required"))
	}
}

func (h *Handler) toggle(c *gin.Context) {
	req, ok := bindVisit(c)
	if !ok {
		return
	}
	ctx, userID := c.Request.Context(), middleware.CurrentUserID(c)
	switch {
	case req.PlanItemID != 0:
		item, err := h.svc.ToggleItem(ctx, userID, uint(req.PlanItemID))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, item)
	case req.LandmarkID != 0:
		lm, err := h.svc.ToggleLandmark(ctx, userID, uint(req.LandmarkID))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, lm)
	default:
		response.Error(c, apperr.Validation("planItemId or landmarkId is required"))
	}
}

func (h *Handler) listLog(c *gin.Context) {
	logs, page, err := h.svc.ListLog(c.Request.Context(), middleware.CurrentUserID(c), pagination.FromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, logs, page)
}

func (h *Handler) createLog(c *gin.Context) {
	var dto CreateLogDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	entry, err := h.svc.CreateLog(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

func (h *Handler) deleteLog(c *gin.Context) {
	id, err := params.ID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.DeleteLog(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
