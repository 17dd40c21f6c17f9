package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"techstore/internal/checkout"
	"techstore/pkg/logkey"
)

type createPaymentIntentRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// CreatePaymentIntent prices the session's cart server-side and opens a
// payment intent over the result. The client only ever names its session;
// the charged amount comes from the catalog.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	traceID := traceID(c)

	var req createPaymentIntentRequest
	if !bindJSON(c, traceID, &req) {
		return
	}
	if !h.validateRequest(c, traceID, req) {
		return
	}

	result, err := h.calc.CreatePaymentIntent(c.Request.Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
		case errors.Is(err, checkout.ErrProductVanished):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "A product in your cart is no longer available"})
		case errors.Is(err, checkout.ErrGatewayUnavailable):
			slog.Error("payment gateway unavailable", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.SessionID, req.SessionID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Payment service unavailable"})
		default:
			slog.Error("error creating payment intent", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.SessionID, req.SessionID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error creating payment intent"})
		}
		return
	}

	slog.Info("payment intent created", slog.String(logkey.TraceID, traceID),
		slog.String(logkey.SessionID, req.SessionID))
	c.JSON(http.StatusOK, result)
}
