package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"techstore/internal/appointments"
	"techstore/internal/orders"
	"techstore/middleware"
	"techstore/pkg/logkey"
)

// GetUserOrders lists the authenticated user's purchase history.
func (h *Handler) GetUserOrders(c *gin.Context) {
	traceID := traceID(c)

	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	list, err := h.o.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("error listing user orders", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.UserID, user.ID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching orders"})
		return
	}
	if list == nil {
		list = []orders.Order{}
	}
	c.JSON(http.StatusOK, list)
}

// GetUserAppointments lists the authenticated user's repair bookings.
func (h *Handler) GetUserAppointments(c *gin.Context) {
	traceID := traceID(c)

	user, ok := middleware.UserFromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	list, err := h.a.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("error listing user appointments", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.UserID, user.ID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching appointments"})
		return
	}
	if list == nil {
		list = []appointments.Appointment{}
	}
	c.JSON(http.StatusOK, list)
}
