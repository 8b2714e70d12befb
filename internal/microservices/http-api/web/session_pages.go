package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookhub/internal/apperr"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/session"
)

func (h *PageHandler) RegisterPage(c *gin.Context) {
	h.render(c, http.StatusOK, "register.html", nil)
}

func (h *PageHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid registration form.")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.auth.Register(ctx, req); err != nil {
		// a taken email or login is reported as a bad form, not a 409
		if errors.Is(err, apperr.ErrConflict) {
			c.String(http.StatusBadRequest, "A user with this email or login already exists.")
			return
		}
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *PageHandler) LoginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.html", nil)
}

func (h *PageHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, "Invalid login form.")
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	user, _, err := h.auth.Login(ctx, req)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) || errors.Is(err, apperr.ErrValidation) {
			c.String(http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		h.fail(c, err)
		return
	}

	sid, err := h.sessions.Create(ctx, h.auth.SessionFor(user))
	if err != nil {
		h.fail(c, apperr.Internal(err))
		return
	}
	h.setSessionCookie(c, sid, int(h.opts.SessionTTL.Seconds()))
	c.Redirect(http.StatusFound, "/home")
}

func (h *PageHandler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(session.CookieName); err == nil && sid != "" {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := h.sessions.Delete(ctx, sid); err != nil {
			h.log.WithError(err).Warn("failed to delete session")
			c.Redirect(http.StatusFound, "/home")
			return
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/")
}

func (h *PageHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, value, maxAge, "/", "", h.opts.CookieSecure, true)
}
