package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecutune/ecutune/internal/adapter/payment"
	"github.com/ecutune/ecutune/internal/server/http/dto"
)

// PaymentHandler manages checkout and provider callbacks.
type PaymentHandler struct {
	facade PaymentFacade
	logger *slog.Logger
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{facade: facade, logger: logger}
}

// Providers handles GET /api/payments/providers.
func (h *PaymentHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProvidersResponse{Providers: h.facade.ProviderNames()})
}

// CreateIntent handles POST /api/orders/:id/payment/:provider.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	intent, err := h.facade.CreatePaymentIntent(c.Request.Context(), CurrentIdentity(c), c.Param("id"), c.Param("provider"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.IntentResponse{PaymentID: intent.ID, ApprovalURL: intent.ApprovalURL})
}

// Webhook handles POST /api/payments/:provider/webhook.
//
// Providers retry non-2xx responses indefinitely, so every payload that
// reached a known provider adapter is acknowledged with 200, malformed ones
// included. Only an unknown provider path and internal failures are not.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	providerName := c.Param("provider")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.HandleWebhook(c.Request.Context(), providerName, body); err != nil {
		switch {
		case errors.Is(err, payment.ErrUnknownProvider):
			c.Status(http.StatusNotFound)
		case errors.Is(err, payment.ErrMalformedWebhook):
			h.logger.Warn("discarding malformed webhook", slog.String("provider", providerName))
			c.Status(http.StatusOK)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}
