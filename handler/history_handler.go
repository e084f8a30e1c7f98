package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
)

type HistoryHandler struct {
	history service.HistoryService
}

func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		history: history,
	}
}

// HandleList returns every question the signed-in user has asked, across
// sessions, oldest first.
func (h *HistoryHandler) HandleList(c *gin.Context) {
	session := middleware.SessionFromContext(c)
	records, err := h.history.List(c.Request.Context(), session.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	questions := make([]types.QuestionRecord, 0, len(records))
	for _, r := range records {
		questions = append(questions, *r)
	}
	respondOK(c, http.StatusOK, types.HistoryResponse{Questions: questions})
}
