package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

type PaymentWebhookHandler struct {
	gateway payment.Gateway
	confirm *ucBooking.ConfirmPaidBooking
}

func NewPaymentWebhookHandler(
	gateway payment.Gateway,
	confirm *ucBooking.ConfirmPaidBooking,
) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{gateway: gateway, confirm: confirm}
}

// Handle answers 200 for anything it will never act on, so the provider
// stops retrying. Gateway failures answer 503 and are retried.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	var n payment.Notification
	_ = c.ShouldBindJSON(&n)

	paymentID, ok := n.PaymentID(c.Query("type"), c.Query("data.id"))
	if !ok {
		ignored(c, "not_a_payment")
		return
	}

	ctx := c.Request.Context()

	p, err := h.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		httperr.Respond(c, httperr.Upstream("payment_lookup_failed", err))
		return
	}

	if !p.Approved() {
		ignored(c, "payment_"+p.Status)
		return
	}
	if p.ExternalReference == "" {
		ignored(c, "missing_reference")
		return
	}

	out, err := h.confirm.Execute(ctx, ucBooking.ConfirmPaidInput{
		BookingID: p.ExternalReference,
		PaymentID: p.ID,
	})
	if err != nil {
		if httperr.Is(err, httperr.KindNotFound) || httperr.IsBusiness(err, "payment_not_expected") {
			logger.L().Warn("payment webhook ignored",
				zap.String("payment_id", p.ID),
				zap.String("booking_id", p.ExternalReference),
				zap.Error(err),
			)
			ignored(c, httperr.CodeOf(err))
			return
		}
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed", "booking": out})
}

func ignored(c *gin.Context, reason string) {
	c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": reason})
}
