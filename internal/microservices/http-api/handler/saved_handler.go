package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/service"
)

type SavedHandler struct {
	svc service.SavedService
}

func NewSavedHandler(svc service.SavedService) *SavedHandler {
	return &SavedHandler{svc: svc}
}

// RegisterRoutes expects the group to be behind Authenticate already.
func (h *SavedHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Save)
	rg.DELETE("/:id", h.Unsave)
}

func (h *SavedHandler) List(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	list, err := h.svc.ListSaved(ctx, middleware.IdentityFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *SavedHandler) Save(c *gin.Context) {
	var req dto.SaveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Save(ctx, middleware.IdentityFrom(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book saved"})
}

func (h *SavedHandler) Unsave(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Unsave(ctx, middleware.IdentityFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book removed"})
}
