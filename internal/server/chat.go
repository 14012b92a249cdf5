package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	chatdomain "github.com/smallbiznis/descomplaca/internal/chat/domain"
)

func (s *Server) ListChatMessages(c *gin.Context) {
	resp, err := s.chatSvc.List(c.Request.Context(), strings.TrimSpace(c.Param("order_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendChatMessage(c *gin.Context) {
	var req chatdomain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.chatSvc.Send(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
