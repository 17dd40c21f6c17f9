package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"

	"techstore/internal/checkout"
	"techstore/internal/orders"
	"techstore/internal/stores/kafka"
	"techstore/pkg/ctxmanage"
	"techstore/pkg/logkey"
)

const maxWebhookBody = 64 * 1024

// Webhook receives payment gateway events. On payment_intent.succeeded the
// order is recorded from the intent's metadata snapshot and the session's
// cart is cleared. Unhandled event types are acknowledged so the gateway
// stops retrying them.
func (h *Handler) Webhook(c *gin.Context) {
	traceID := traceID(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	var event stripe.Event
	if err := json.NewDecoder(c.Request.Body).Decode(&event); err != nil {
		slog.Error("invalid webhook payload", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			slog.Error("invalid payment intent in event", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
			return
		}
		h.handlePaymentSucceeded(c, traceID, &pi)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Event type not handled"})
	}
}

func (h *Handler) handlePaymentSucceeded(c *gin.Context, traceID string, pi *stripe.PaymentIntent) {
	ctx := c.Request.Context()
	sessionID := pi.Metadata[checkout.MetaSessionID]

	var snapshot []checkout.IntentItem
	if raw := pi.Metadata[checkout.MetaItems]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
			slog.Error("invalid item snapshot in intent metadata", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid payload"})
			return
		}
	}

	items := make([]orders.Item, 0, len(snapshot))
	for _, s := range snapshot {
		items = append(items, orders.Item{ProductID: s.ProductID, Quantity: s.Quantity, Price: s.Price})
	}

	total := parseAmount(pi.Metadata[checkout.MetaTotal])
	tax := parseAmount(pi.Metadata[checkout.MetaTax])

	order, err := h.o.Create(ctx, orders.NewOrder{
		SessionID:       sessionID,
		Status:          orders.StatusPaid,
		TotalAmount:     total,
		TaxAmount:       tax,
		PaymentIntentID: pi.ID,
		Items:           items,
	})
	if err != nil {
		slog.Error("error recording paid order", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.SessionID, sessionID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error recording order"})
		return
	}

	if sessionID != "" {
		if err := h.c.Clear(ctx, sessionID); err != nil {
			// The order is already recorded; a stale cart is recoverable.
			slog.Error("error clearing cart after payment", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.SessionID, sessionID), slog.String(logkey.ERROR, err.Error()))
		}
	}

	if h.events != nil {
		go h.publishOrderPaid(traceID, order)
	}

	slog.Info("order recorded from payment", slog.String(logkey.TraceID, traceID),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.SessionID, sessionID))
	c.JSON(http.StatusOK, gin.H{"received": true, "orderId": order.ID})
}

// publishOrderPaid emits one event per purchased line. Runs off the request
// path; the webhook response never waits on the broker.
func (h *Handler) publishOrderPaid(traceID string, order orders.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = ctxmanage.WithTraceID(ctx, traceID)

	for _, item := range order.Items {
		event := kafka.OrderPaidEvent{
			OrderID:   order.ID,
			SessionID: order.SessionID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CreatedAt: time.Now().UTC(),
		}
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("error marshaling order event", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
			continue
		}
		if err := h.events.ProduceMessage(ctx, kafka.TopicOrderPaid, []byte(order.ID), value); err != nil {
			slog.Error("error publishing order event", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.OrderID, order.ID), slog.String(logkey.ERROR, err.Error()))
		}
	}
}

// parseAmount reads a decimal string from intent metadata, tolerating absent
// or malformed values as zero rather than rejecting the whole event.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
