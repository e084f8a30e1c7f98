package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chat: chat,
	}
}

func (h *ChatHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.chat.Ask(c.Request.Context(), middleware.SessionFromContext(c), req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}

func (h *ChatHandler) HandleTranscript(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	respondOK(c, http.StatusOK, types.TranscriptResponse{
		Messages: session.Transcript(),
	})
}

// HandleClearTranscript empties the conversation. The index handle is kept.
func (h *ChatHandler) HandleClearTranscript(c *gin.Context) {
	middleware.SessionFromContext(c).ClearTranscript()
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  true,
		Message: "Messages cleared",
	})
}
