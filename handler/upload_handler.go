package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/middleware"
	"github.com/tieubaoca/pdfchat/service"
	"github.com/tieubaoca/pdfchat/types"
)

type UploadHandler struct {
	documents *service.DocumentService
	chat      *service.ChatService
}

func NewUploadHandler(documents *service.DocumentService, chat *service.ChatService) *UploadHandler {
	return &UploadHandler{
		documents: documents,
		chat:      chat,
	}
}

// HandleProcess indexes the uploaded PDFs (multipart field "files") for the
// caller's session, replacing whatever the session indexed before.
func (h *UploadHandler) HandleProcess(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Invalid multipart form",
		})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  false,
			Message: "Please upload at least one PDF file",
		})
		return
	}

	docs, err := h.documents.FromUploads(files)
	if err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.chat.ProcessDocuments(c.Request.Context(), middleware.SessionFromContext(c), docs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, resp)
}
