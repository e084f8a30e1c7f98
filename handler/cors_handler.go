package handler

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

type CorsHandler struct {
	allowedOrigins []string
}

// NewCorsHandler allows the given origins, or every origin when none are
// given.
func NewCorsHandler(allowedOrigins ...string) *CorsHandler {
	return &CorsHandler{
		allowedOrigins: allowedOrigins,
	}
}

func (h *CorsHandler) allowOrigin(origin string) string {
	if len(h.allowedOrigins) == 0 {
		return "*"
	}
	if slices.Contains(h.allowedOrigins, origin) {
		return origin
	}
	return ""
}

func (h *CorsHandler) CorsMiddleware(c *gin.Context) {
	if origin := h.allowOrigin(c.Request.Header.Get("Origin")); origin != "" {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Add("Vary", "Origin")
		}
	}
	c.Writer.Header().Set("Access-Control-Allow-Methods", strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions,
	}, ", "))
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusOK)
		return
	}
	c.Next()
}
