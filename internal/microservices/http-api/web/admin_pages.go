package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/repository"
)

// formChoices loads the author and collection lists offered by the book forms.
func (h *PageHandler) formChoices(c *gin.Context) (gin.H, bool) {
	ctx, cancel := requestContext(c)
	defer cancel()

	authors, err := h.catalog.ListAuthors(ctx)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	collections, err := h.catalog.ListCollections(ctx)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return gin.H{"Authors": authors, "Collections": collections}, true
}

func (h *PageHandler) AddBookPage(c *gin.Context) {
	data, ok := h.formChoices(c)
	if !ok {
		return
	}
	data["Book"] = dto.BookView{}
	h.render(c, http.StatusOK, "add-book.html", data)
}

func (h *PageHandler) AddBook(c *gin.Context) {
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "Invalid book form.")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.catalog.CreateBook(ctx, middleware.IdentityFrom(c), form.ToCreate())
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			c.String(http.StatusBadRequest, "Error: a book with this ID already exists.")
			return
		}
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/home/preview/%d", book.ID))
}

func (h *PageHandler) ManageBooks(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.catalog.ListBooks(ctx, repository.BookFilter{})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "manage-books.html", gin.H{"Books": books})
}

func (h *PageHandler) EditBookPage(c *gin.Context) {
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
	data, ok := h.formChoices(c)
	if !ok {
		return
	}
	data["Book"] = detail.BookView
	h.render(c, http.StatusOK, "edit-book.html", data)
}

func (h *PageHandler) EditBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		c.String(http.StatusBadRequest, "Invalid book form.")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.catalog.ReplaceBook(ctx, middleware.IdentityFrom(c), id, form.ToReplace()); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/manage-books")
}

func (h *PageHandler) DeleteBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	// deleting an already missing book still lands on the list
	if err := h.catalog.DeleteBook(ctx, middleware.IdentityFrom(c), id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/manage-books")
}
