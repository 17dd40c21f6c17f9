// Package handlers exposes the storefront HTTP surface.
package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"techstore/internal/appointments"
	"techstore/internal/cart"
	"techstore/internal/checkout"
	"techstore/internal/orders"
	"techstore/internal/products"
	"techstore/internal/sessions"
	"techstore/internal/stores/kafka"
	"techstore/internal/users"
	"techstore/middleware"
	"techstore/pkg/ctxmanage"
	"techstore/pkg/logkey"
)

type Handler struct {
	u          *users.Conf
	s          *sessions.Conf
	p          *products.Conf
	c          *cart.Conf
	a          *appointments.Conf
	o          *orders.Conf
	calc       *checkout.Calculator
	events     *kafka.Conf // nil when no broker is configured
	validate   *validator.Validate
	sessionTTL time.Duration
}

func NewHandler(u *users.Conf, s *sessions.Conf, p *products.Conf, c *cart.Conf,
	a *appointments.Conf, o *orders.Conf, calc *checkout.Calculator,
	events *kafka.Conf, sessionTTL time.Duration) (*Handler, error) {
	if u == nil || s == nil || p == nil || c == nil || a == nil || o == nil || calc == nil {
		return nil, fmt.Errorf("handler dependency is nil")
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Handler{
		u:          u,
		s:          s,
		p:          p,
		c:          c,
		a:          a,
		o:          o,
		calc:       calc,
		events:     events,
		validate:   validator.New(),
		sessionTTL: sessionTTL,
	}, nil
}

// API wires the routes onto a fresh engine.
func API(h *Handler, m *middleware.Mid) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	api := r.Group("/api")
	{
		api.HEAD("", func(c *gin.Context) { c.Status(http.StatusOK) })
		api.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "API is healthy"})
		})

		api.GET("/products", h.ListProducts)
		api.POST("/products", h.CreateProduct)
		api.GET("/products/:id", h.GetProduct)

		api.POST("/appointments", h.CreateAppointment)
		api.GET("/appointments", h.ListAppointments)
		api.PATCH("/appointments/:id/status", h.UpdateAppointmentStatus)

		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/auth/me", m.Authentication(), h.Me)

		user := api.Group("/user")
		user.Use(m.Authentication())
		{
			user.GET("/orders", h.GetUserOrders)
			user.GET("/appointments", h.GetUserAppointments)
		}

		api.GET("/cart/:sessionId", h.GetCart)
		api.POST("/cart", h.AddToCart)
		api.PATCH("/cart/:id", h.UpdateCartItem)
		// gin's router cannot hold the static "clear" segment next to the :id
		// wildcard, so both DELETE routes share a catch-all and dispatch by hand.
		api.DELETE("/cart/*target", h.DeleteCart)

		api.GET("/orders/:id", h.GetOrder)
		api.POST("/create-payment-intent", h.CreatePaymentIntent)
		api.POST("/stripe/webhook", h.Webhook)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validateRequest runs struct validation and answers 400 with the first
// field error. Returns false when the request was rejected.
func (h *Handler) validateRequest(c *gin.Context, traceID string, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		vErr := vErrs[0]
		var msg string
		switch vErr.Tag() {
		case "required":
			msg = vErr.Field() + " value missing"
		case "email":
			msg = vErr.Field() + " must be a valid email address"
		case "min":
			msg = vErr.Field() + " value is less than " + vErr.Param()
		default:
			msg = http.StatusText(http.StatusBadRequest)
		}
		slog.Error("validation failed", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msg})
		return false
	}

	slog.Error("validation failed", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
	return false
}

// bindJSON decodes the body and answers 400 on malformed JSON. Returns false
// when the request was rejected.
func bindJSON(c *gin.Context, traceID string, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return false
	}
	return true
}

func traceID(c *gin.Context) string {
	return ctxmanage.GetTraceIDOfRequest(c)
}
