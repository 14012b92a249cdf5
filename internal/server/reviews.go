package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/smallbiznis/descomplaca/internal/review/domain"
)

func (s *Server) CreateReview(c *gin.Context) {
	var req reviewdomain.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.reviewSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDispatcherReviews(c *gin.Context) {
	resp, err := s.reviewSvc.ListByDispatcher(c.Request.Context(), strings.TrimSpace(c.Param("dispatcher_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
