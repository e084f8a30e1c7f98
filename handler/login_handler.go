package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
	"github.com/tieubaoca/pdfchat/utils"
)

type LoginHandler interface {
	HandleSignup(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
}

type loginHandler struct {
	userService service.UserService
	sessions    *service.SessionStore
	jwtSecret   string
	tokenTTL    time.Duration
}

func NewLoginHandler(userService service.UserService, sessions *service.SessionStore, jwtSecret string, tokenTTL time.Duration) LoginHandler {
	return &loginHandler{
		userService: userService,
		sessions:    sessions,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
	}
}

func (h *loginHandler) HandleSignup(c *gin.Context) {
	var req types.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.userService.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, types.SignupResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// HandleLogin starts a fresh session: empty transcript, no index handle.
func (h *loginHandler) HandleLogin(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	session := h.sessions.Create(user)
	token, err := utils.GenerateUserToken(h.jwtSecret, h.tokenTTL, user, session.ID)
	if err != nil {
		h.sessions.Delete(session.ID)
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, types.LoginResponse{
		AccessToken: token,
		Username:    user.Username,
	})
}

func (h *loginHandler) HandleLogout(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	h.sessions.Delete(session.ID)
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Logged out",
	})
}
