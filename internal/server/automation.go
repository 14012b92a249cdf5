package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) StartSession(c *gin.Context) {
	sess, err := s.sessions.Start(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID})
}

func (s *Server) ClearSession(c *gin.Context) {
	if err := s.sessions.Clear(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleaned"})
}

func (s *Server) ProcessSession(c *gin.Context) {
	resp, err := s.sessions.Process(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) StartGovBRLogin(c *gin.Context) {
	if err := s.sessions.StartGovBRLogin(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "navigated", "message": "Please scan QR Code"})
}

func (s *Server) RefreshPipeline(c *gin.Context) {
	snap, err := s.pipeline.Refresh(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "count": len(snap.Data)})
}

func (s *Server) GetPipelineData(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Get(c.Request.Context()))
}
