package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"techstore/internal/orders"
	"techstore/pkg/logkey"
)

// GetOrder serves a single order for the post-checkout confirmation page.
func (h *Handler) GetOrder(c *gin.Context) {
	traceID := traceID(c)
	orderID := c.Param("id")

	order, err := h.o.GetByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Order not found"})
			return
		}
		slog.Error("error fetching order", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching order"})
		return
	}
	c.JSON(http.StatusOK, order)
}
