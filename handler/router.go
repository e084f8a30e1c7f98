package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
)

type Handlers struct {
	Login     LoginHandler
	Upload    *UploadHandler
	Chat      *ChatHandler
	History   *HistoryHandler
	WebSocket *WebSocketHandler
}

// NewRouter mounts the API under /api/v1. Everything except signup and
// login needs a live session.
func NewRouter(jwtSecret string, sessions *service.SessionStore, h Handlers, corsOrigins ...string) *gin.Engine {
	router := gin.Default()
	router.Use(NewCorsHandler(corsOrigins...).CorsMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	apiV1 := router.Group("/api/v1")
	apiV1.POST("/signup", h.Login.HandleSignup)
	apiV1.POST("/login", h.Login.HandleLogin)

	// Protected user routes
	userRoutes := apiV1.Group("/")
	userRoutes.Use(middleware.AuthMiddleware(jwtSecret, sessions))
	{
		userRoutes.POST("/logout", h.Login.HandleLogout)
		userRoutes.POST("/documents/process", h.Upload.HandleProcess)
		userRoutes.POST("/chat/ask", h.Chat.HandleAsk)
		userRoutes.GET("/chat/transcript", h.Chat.HandleTranscript)
		userRoutes.DELETE("/chat/transcript", h.Chat.HandleClearTranscript)
		userRoutes.GET("/chat/ws", h.WebSocket.HandleChat)
		userRoutes.GET("/history", h.History.HandleList)
	}
	return router
}
