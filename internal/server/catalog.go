package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalog.Get().List()})
}

// GetService doubles as the eligibility check: unknown services are 404.
func (s *Server) GetService(c *gin.Context) {
	svc, ok := s.catalog.Service(c.Param("id"))
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": svc})
}
