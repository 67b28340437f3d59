package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/middleware"
	"github.com/wayfarer-labs/planner/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalMW gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/login", h.login)
	a.POST("/logout", optionalMW, h.logout)
	a.GET("/session", optionalMW, h.session)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password, dto.IsSignUp, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	setTokenCookie(c, res.Token, h.svc.TTL())
	response.OK(c, res)
}

func (h *Handler) logout(c *gin.Context) {
	if middleware.IsAuthenticated(c) {
		if err := h.svc.Logout(c.Request.Context(), middleware.CurrentUserID(c), middleware.CurrentSessionID(c)); err != nil {
			response.Error(c, err)
			return
		}
	}
	clearTokenCookie(c)
	response.OK(c, gin.H{"success": true})
}

func (h *Handler) session(c *gin.Context) {
	if !middleware.IsAuthenticated(c) {
		response.OK(c, nil)
		return
	}
	user, err := h.svc.CurrentUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if user == nil {
		response.OK(c, nil)
		return
	}
	response.OK(c, sessionResponse{User: user, SessionID: middleware.CurrentSessionID(c)})
}
