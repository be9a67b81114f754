package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// gin context keys
const (
	CtxRequestID = "request_id"
	ctxActorKey  = "auth.actor"
)

// abort writes the shared error envelope; detail mirrors message for clients
// that only read the top-level field.
func abort(c *gin.Context, status int, code, msg string) {
	errBody := gin.H{
		"code":    code,
		"message": msg,
	}
	if id := c.GetString(CtxRequestID); id != "" {
		errBody["requestId"] = id
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": msg, "error": errBody})
}

func abortUnauthorized(c *gin.Context, msg string) {
	abort(c, http.StatusUnauthorized, "unauthorized", msg)
}
