package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bookhub/internal/apperr"
)

// requestTimeout bounds every store round trip made on behalf of a request.
const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError writes {"error": {"code", "message", "details"}} with the status matching the code.
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		_ = c.Error(err)
	}
	c.JSON(e.Code.HTTPStatus(), gin.H{"error": e})
}

// bindError reports a malformed request body.
func bindError(c *gin.Context, err error) {
	respondError(c, apperr.Validation(map[string]string{"body": err.Error()}))
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		respondError(c, apperr.Validation(map[string]string{param: "must be an integer"}))
		return 0, false
	}
	return id, true
}
