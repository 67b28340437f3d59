package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wayfarer-labs/planner/internal/pkg/apperr"
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

type envelope struct {
	Data interface{} `json:"data"`
}

type pagedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type errorBody struct {
	Error string     `json:"error"`
	Code  apperr.Kind `json:"code"`
}

// OK sends a 200 response wrapped in {data}.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Data: data})
}

// Paged sends a paginated response.
func Paged(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, pagedResponse{Data: data, Pagination: pagination})
}

// Created sends a 201 response wrapped in {data}.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Data: data})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail writes {error, code} with the status for kind and aborts the chain.
func Fail(c *gin.Context, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(kind.Status(), errorBody{Error: message, Code: kind})
}

// BadRequest sends a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	Fail(c, apperr.KindValidation, message)
}

// Unauthorized sends a 401 error response.
func Unauthorized(c *gin.Context) {
	Fail(c, apperr.KindUnauthorized, "not signed in")
}

// NotFound sends a 404 error response.
func NotFound(c *gin.Context) {
	Fail(c, apperr.KindNotFound, "not found")
}

// Error classifies err and writes it. Persistence causes are attached to the gin context for the logger.
func Error(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	var ae *apperr.Error
	if kind == apperr.KindPersistence || kind == apperr.KindTimeout || !errors.As(err, &ae) {
		_ = c.Error(err)
	}
	Fail(c, kind, apperr.PublicMessage(err))
}
