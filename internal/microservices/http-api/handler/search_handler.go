package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/microservices/http-api/service"
)

type SearchHandler struct {
	svc service.SearchService
}

func NewSearchHandler(svc service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search answers GET ?q=; a missing q is the empty query and yields [].
func (h *SearchHandler) Search(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.svc.Search(ctx, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
