package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/microservices/http-api/service"
)

type BookHandler struct {
	svc service.CatalogService
}

func NewBookHandler(svc service.CatalogService) *BookHandler {
	return &BookHandler{svc: svc}
}

// RegisterRoutes mounts the public reads and, behind authenticate, the admin writes.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, authenticate gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)

	// Admin-only routes
	rg.POST("", authenticate, middleware.RequireAdmin(), h.Create)
	rg.PUT("/:id", authenticate, middleware.RequireAdmin(), h.Update)
	rg.DELETE("/:id", authenticate, middleware.RequireAdmin(), h.Delete)
}

func (h *BookHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	filter := repository.BookFilter{Flag: models.BookFlag(c.Query("flag"))}
	list, err := h.svc.ListBooks(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.svc.GetBook(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BookHandler) Create(c *gin.Context) {
	var in dto.CreateBookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.CreateBook(ctx, middleware.IdentityFrom(c), in)
	if err != nil {
		// a taken id has always answered 400; the body still says CONFLICT
		if errors.Is(err, apperr.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{"error": apperr.From(err)})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := h.svc.UpdateBook(ctx, middleware.IdentityFrom(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteBook(ctx, middleware.IdentityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}
