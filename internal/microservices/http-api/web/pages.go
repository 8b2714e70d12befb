// Package web serves the server-rendered pages and the session-backed JSON endpoints
// the pages call from the browser.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/session"
)

//go:embed templates/*.html
var templates embed.FS

const requestTimeout = 5 * time.Second

// Templates parses the embedded page templates for gin's SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(templates, "templates/*.html")
}

// Options carries the cookie settings for login sessions.
type Options struct {
	CookieSecure bool
	SessionTTL   time.Duration
}

type PageHandler struct {
	catalog  service.CatalogService
	saved    service.SavedService
	search   service.SearchService
	auth     service.AuthService
	sessions session.Store
	resolver middleware.IdentityResolver
	opts     Options
	log      *logrus.Logger
}

func NewPageHandler(
	catalog service.CatalogService,
	saved service.SavedService,
	search service.SearchService,
	authService service.AuthService,
	sessions session.Store,
	resolver middleware.IdentityResolver,
	opts Options,
	log *logrus.Logger,
) *PageHandler {
	return &PageHandler{
		catalog:  catalog,
		saved:    saved,
		search:   search,
		auth:     authService,
		sessions: sessions,
		resolver: resolver,
		opts:     opts,
		log:      log,
	}
}

// RegisterRoutes mounts every page route on r. The engine must carry Templates().
func (h *PageHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	public := r.Group("", middleware.OptionalIdentity(h.resolver))
	{
		public.GET("/", h.Index)
		public.GET("/catalog", h.Catalog)
		public.GET("/preview/:id", h.Preview)
		public.GET("/author/:id", h.Author)
		public.GET("/collection/:id", h.Collection)
		public.GET("/search", h.Search)
	}

	user := r.Group("", middleware.IsAuthenticated(h.resolver))
	{
		user.GET("/home", h.Home)
		user.GET("/home/catalog", h.Catalog)
		user.GET("/home/preview/:id", h.Preview)
		user.GET("/savage", h.Savage)
		user.POST("/save-book", h.SaveBook)
		user.DELETE("/saved/delete/:id", h.UnsaveBook)
	}

	admin := r.Group("/admin", middleware.IsAuthenticated(h.resolver), middleware.IsAdmin())
	{
		admin.GET("/add-book", h.AddBookPage)
		admin.POST("/add-book", h.AddBook)
		admin.GET("/manage-books", h.ManageBooks)
		admin.GET("/edit-book/:id", h.EditBookPage)
		admin.POST("/edit-book/:id", h.EditBook)
		admin.POST("/delete-book/:id", h.DeleteBook)
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// render adds the viewer to data so templates can show the account and admin links.
func (h *PageHandler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = middleware.IdentityFrom(c)
	data["InHome"] = strings.HasPrefix(c.Request.URL.Path, "/home")
	c.HTML(status, name, data)
}

// fail answers a page request in plain text. Internal errors are logged and get a generic message.
func (h *PageHandler) fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("page request failed")
		c.String(http.StatusInternalServerError, "Server error.")
		return
	}
	c.String(e.Code.HTTPStatus(), pageMessage(e))
}

func pageMessage(e *apperr.Error) string {
	if e.Code == apperr.CodeValidation {
		if fields, ok := e.Details.(map[string]string); ok {
			keys := make([]string, 0, len(fields))
			for field := range fields {
				keys = append(keys, field)
			}
			sort.Strings(keys)
			parts := make([]string, 0, len(keys))
			for _, field := range keys {
				parts = append(parts, field+" "+fields[field])
			}
			return "Invalid input: " + strings.Join(parts, "; ")
		}
	}
	msg := e.Message
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return msg + "."
}

func bookID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid book id.")
		return 0, false
	}
	return id, true
}

// jsonResult is the {success, message} body of the browser-side save endpoints.
func (h *PageHandler) jsonResult(c *gin.Context, err error, okMessage string) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": okMessage})
		return
	}
	e := apperr.From(err)
	if errors.Is(e, apperr.ErrInternal) {
		h.log.WithError(err).Error("saved list update failed")
	}
	c.JSON(e.Code.HTTPStatus(), gin.H{"success": false, "message": e.Message})
}
