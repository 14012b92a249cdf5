package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) UploadDocument(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "required", "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	defer file.Close()

	stored, err := s.documents.Upload(c.Request.Context(), strings.TrimSpace(c.Param("order_id")), header.Filename, file)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename": stored.Filename,
		"path":     stored.Path,
		"size":     stored.Size,
		"status":   "uploaded",
	})
}
