package middleware

import (
	"log/slog"
	"net/http"

	"refund-settlement-engine/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes a response for handlers that recorded an error with
// c.Error but never answered. Public errors carry their response in Meta;
// private ones are mapped by engine category.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last()
		if resp, ok := last.Meta.(httperr.Response); ok && last.IsType(gin.ErrorTypePublic) {
			c.JSON(resp.Status, resp)
			return
		}

		status, code := httperr.StatusOf(last.Err)
		resp := httperr.Response{Status: status}
		resp.Error.Code = code
		resp.Error.Message = last.Err.Error()
		if status == http.StatusInternalServerError {
			slog.Error("unhandled request error", "request_id", GetRequestID(c), "path", c.Request.URL.Path, "error", last.Err.Error())
			resp.Error.Message = "Internal server error"
		}
		c.JSON(status, resp)
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("recovered from panic", "panic", p, "request_id", GetRequestID(c), "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Code = "INTERNAL"
				resp.Error.Message = "Internal server error"
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
