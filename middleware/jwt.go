package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
	"github.com/tieubaoca/pdfchat/utils"
)

const (
	userContextKey    = "user"
	sessionContextKey = "session"
)

// AuthMiddleware accepts a token from the Authorization header, or from the
// token query parameter for clients that cannot set headers (websockets).
// The token's session must still be live.
func AuthMiddleware(secret string, sessions *service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, message := requestToken(c.Request)
		if token == "" {
			abortUnauthorized(c, message)
			return
		}

		claims, err := utils.ParseUserToken(secret, token)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}

		session, err := sessions.Get(claims.SessionID)
		if err != nil {
			abortUnauthorized(c, "Session has ended, please log in again")
			return
		}

		c.Set(userContextKey, claims)
		c.Set(sessionContextKey, session)
		c.Next()
	}
}

func requestToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get("token"); token != "" {
			return token, ""
		}
		return "", "Authorization header is required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Authorization header format must be Bearer {token}"
	}
	return parts[1], ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.DataResponse{
		Status:  false,
		Message: message,
	})
}

// SessionFromContext returns the session attached by AuthMiddleware.
func SessionFromContext(c *gin.Context) *service.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := v.(*service.Session)
	return session
}

func ClaimsFromContext(c *gin.Context) *utils.UserClaims {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.UserClaims)
	return claims
}
