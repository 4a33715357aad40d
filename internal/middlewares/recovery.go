package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/zlog"

	"github.com/avraam311/image-compressor/internal/api/handlers"
)

// Recovery turns a panic into a 500 with a JSON error body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		zlog.Logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("recovered from panic")
		handlers.Fail(c.Writer, http.StatusInternalServerError, errors.New("internal server error"))
		c.Abort()
	})
}
