package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"techstore/internal/appointments"
	"techstore/middleware"
	"techstore/pkg/logkey"
)

type updateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateAppointment books a repair slot. Guests may book; when a bearer
// token is present the booking is attached to that account.
func (h *Handler) CreateAppointment(c *gin.Context) {
	traceID := traceID(c)

	var na appointments.NewAppointment
	if !bindJSON(c, traceID, &na) {
		return
	}
	if !h.validateRequest(c, traceID, na) {
		return
	}

	// The booking form does not require login, but a logged-in user gets the
	// appointment on their account.
	if token, ok := middleware.BearerToken(c); ok {
		if u, err := h.s.ResolveSession(c.Request.Context(), token); err == nil {
			na.UserID = u.ID
		}
	}

	appt, err := h.a.Create(c.Request.Context(), na)
	if err != nil {
		slog.Error("error creating appointment", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error creating appointment"})
		return
	}

	slog.Info("appointment booked", slog.String(logkey.TraceID, traceID))
	c.JSON(http.StatusCreated, appt)
}

// ListAppointments serves the full appointment list for the service desk.
func (h *Handler) ListAppointments(c *gin.Context) {
	traceID := traceID(c)

	list, err := h.a.List(c.Request.Context())
	if err != nil {
		slog.Error("error listing appointments", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching appointments"})
		return
	}
	if list == nil {
		list = []appointments.Appointment{}
	}
	c.JSON(http.StatusOK, list)
}

// UpdateAppointmentStatus moves an appointment through its lifecycle.
func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	traceID := traceID(c)
	apptID := c.Param("id")

	var req updateAppointmentStatusRequest
	if !bindJSON(c, traceID, &req) {
		return
	}
	if !h.validateRequest(c, traceID, req) {
		return
	}

	appt, err := h.a.UpdateStatus(c.Request.Context(), apptID, appointments.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Appointment not found"})
		case errors.Is(err, appointments.ErrInvalidTransition):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid status transition"})
		default:
			slog.Error("error updating appointment status", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error updating appointment"})
		}
		return
	}
	c.JSON(http.StatusOK, appt)
}
