package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored artifacts.
type FileHandler struct {
	facade FileFacade
}

// NewFileHandler constructs FileHandler.
func NewFileHandler(facade FileFacade) *FileHandler {
	return &FileHandler{facade: facade}
}

// Download handles GET /api/files/:name.
func (h *FileHandler) Download(c *gin.Context) {
	f, err := h.facade.OpenFile(c.Param("name"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=\""+c.Param("name")+"\"")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}
