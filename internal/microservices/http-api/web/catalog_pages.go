package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
)

// home page buckets
var buckets = []struct {
	key   string
	flag  models.BookFlag
	limit int
}{
	{"NewUpdates", models.FlagNewUpdate, 12},
	{"BeingRead", models.FlagBeingRead, 3},
	{"Trending", models.FlagTrending, 3},
	{"Popular", models.FlagPopular, 3},
}

func (h *PageHandler) Index(c *gin.Context) {
	h.renderBuckets(c, "index.html")
}

func (h *PageHandler) Home(c *gin.Context) {
	h.renderBuckets(c, "home.html")
}

func (h *PageHandler) renderBuckets(c *gin.Context, name string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	data := gin.H{}
	for _, b := range buckets {
		books, err := h.catalog.ListBooks(ctx, repository.BookFilter{Flag: b.flag, Limit: b.limit})
		if err != nil {
			h.fail(c, err)
			return
		}
		data[b.key] = books
	}
	h.render(c, http.StatusOK, name, data)
}

// Catalog serves both /catalog and /home/catalog.
func (h *PageHandler) Catalog(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.catalog.ListBooks(ctx, repository.BookFilter{})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "catalog.html", gin.H{"Books": books})
}

// Preview serves both /preview/:id and /home/preview/:id.
func (h *PageHandler) Preview(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.catalog.GetBook(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "preview.html", gin.H{"Book": detail.BookView, "Similar": detail.Similar})
}

func (h *PageHandler) Author(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.catalog.GetAuthor(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "author.html", gin.H{"Author": page.Author, "Books": page.Books})
}

func (h *PageHandler) Collection(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.catalog.GetCollection(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "collection.html", gin.H{"Collection": page.Collection, "Books": page.Books})
}

// Search is the JSON endpoint behind the search box.
func (h *PageHandler) Search(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	results, err := h.search.Search(ctx, c.Query("q"))
	if err != nil {
		h.log.WithError(err).Error("search failed")
		c.JSON(http.StatusInternalServerError, []dto.BookView{})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *PageHandler) Savage(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.saved.ListSaved(ctx, middleware.IdentityFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "savage.html", gin.H{"Books": books})
}

func (h *PageHandler) SaveBook(c *gin.Context) {
	var req dto.SaveBookRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "book id is required"})
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.saved.Save(ctx, middleware.IdentityFrom(c), req.ID)
	h.jsonResult(c, err, "Book added to your saved list.")
}

func (h *PageHandler) UnsaveBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	err := h.saved.Unsave(ctx, middleware.IdentityFrom(c), id)
	h.jsonResult(c, err, "Book removed from your saved list.")
}
