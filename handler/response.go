package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdfchat/types"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, types.ErrIndexMissing),
		errors.Is(err, types.ErrDuplicateUsername),
		errors.Is(err, types.ErrEmbeddingModelMismatch):
		return http.StatusConflict
	case errors.Is(err, types.ErrAuthenticationFailure),
		errors.Is(err, types.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrInvalidInput),
		errors.Is(err, types.ErrEmptyQuestion),
		errors.Is(err, types.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrProviderFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// errorMessage is what the user sees; internals stay in the log.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrIndexMissing):
		return "Please upload and process your PDF files first"
	case errors.Is(err, types.ErrEmbeddingModelMismatch):
		return "The document index was built with a different embedding model, please process your PDF files again"
	case errors.Is(err, types.ErrProviderFailure):
		return "The AI provider failed to respond, please try again"
	case errors.Is(err, types.ErrDuplicateUsername):
		return "Username already exists"
	case errors.Is(err, types.ErrAuthenticationFailure):
		return "Invalid username or password"
	}
	if errorStatus(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "status", status, "err", err)
	} else {
		slog.Warn("request rejected", "method", c.Request.Method, "path", c.FullPath(), "status", status, "err", err)
	}
	c.JSON(status, types.DataResponse{
		Status:  false,
		Message: errorMessage(err),
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, types.DataResponse{
		Status: true,
		Data:   data,
	})
}
