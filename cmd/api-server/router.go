package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/handler"
	"bookhub/internal/microservices/http-api/middleware"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/microservices/http-api/service"
	"bookhub/internal/microservices/http-api/web"
	"bookhub/internal/session"
	"bookhub/internal/validation"
)

// services is everything the routes call into.
type services struct {
	auth          service.AuthService
	catalog       service.CatalogService
	saved         service.SavedService
	search        service.SearchService
	authenticator *auth.Authenticator
	sessions      session.Store
}

func newServices(store *repository.Store, sessions session.Store, tokens *auth.TokenManager, log *logrus.Logger) *services {
	v := validation.New()
	return &services{
		auth:          service.NewAuthService(store.Users, tokens, v, log),
		catalog:       service.NewCatalogService(store, v, log),
		saved:         service.NewSavedService(store, log),
		search:        service.NewSearchService(store, log),
		authenticator: auth.NewAuthenticator(tokens, store.Users, sessions),
		sessions:      sessions,
	}
}

type routerOptions struct {
	TokenTTL     time.Duration
	SessionTTL   time.Duration
	CookieSecure bool
}

func newRouter(svc *services, opts routerOptions, log *logrus.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive",
		})
	})

	authenticate := middleware.Authenticate(svc.authenticator)

	api := r.Group("/api")
	{
		handler.NewAuthHandler(svc.auth, opts.TokenTTL).RegisterRoutes(api.Group("/auth"))
		handler.NewBookHandler(svc.catalog).RegisterRoutes(api.Group("/books"), authenticate)
		api.GET("/search", handler.NewSearchHandler(svc.search).Search)
		handler.NewSavedHandler(svc.saved).RegisterRoutes(api.Group("/saved", authenticate))
	}

	pages := web.NewPageHandler(
		svc.catalog,
		svc.saved,
		svc.search,
		svc.auth,
		svc.sessions,
		svc.authenticator,
		web.Options{CookieSecure: opts.CookieSecure, SessionTTL: opts.SessionTTL},
		log,
	)
	pages.RegisterRoutes(r)

	return r, nil
}
