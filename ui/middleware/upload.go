package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitUploadSize caps request bodies at maxBytes. Reads past the cap fail,
// which surfaces as a multipart or JSON binding error in the handler.
func LimitUploadSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
