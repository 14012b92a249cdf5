package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/descomplaca/internal/payment/adapters/asaas"
)

func (s *Server) CreateCheckout(c *gin.Context) {
	resp, err := s.paymentSvc.CreateCheckout(c.Request.Context(), strings.TrimSpace(c.Param("proposal_id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPaymentByID(c *gin.Context) {
	resp, err := s.paymentSvc.GetPayment(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	s.ingestWebhook(c, strings.ToLower(strings.TrimSpace(c.Param("provider"))))
}

// HandleAsaasWebhook serves the legacy notification URL configured on Asaas.
func (s *Server) HandleAsaasWebhook(c *gin.Context) {
	s.ingestWebhook(c, asaas.ProviderName)
}

func (s *Server) ingestWebhook(c *gin.Context, provider string) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.paymentSvc.HandleNotification(c.Request.Context(), provider, payload, c.Request.Header); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
