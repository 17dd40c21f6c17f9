package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techstore/internal/cart"
	"techstore/internal/products"
	"techstore/pkg/logkey"
)

type addToCartRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

// GetCart serves the session's cart with current product data joined in.
func (h *Handler) GetCart(c *gin.Context) {
	traceID := traceID(c)
	sessionID := c.Param("sessionId")

	lines, err := h.c.ListWithProducts(c.Request.Context(), sessionID)
	if err != nil {
		slog.Error("error fetching cart", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.SessionID, sessionID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching cart"})
		return
	}
	c.JSON(http.StatusOK, lines)
}

// AddToCart adds a product to the cart, merging into an existing line for
// the same product. An omitted quantity means 1.
func (h *Handler) AddToCart(c *gin.Context) {
	traceID := traceID(c)

	var req addToCartRequest
	if !bindJSON(c, traceID, &req) {
		return
	}
	if !h.validateRequest(c, traceID, req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.c.AddItem(c.Request.Context(), req.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
		case errors.Is(err, products.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Product not found"})
		default:
			slog.Error("error adding to cart", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.ProductID, req.ProductID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error adding to cart"})
		}
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceID),
		slog.String(logkey.SessionID, req.SessionID), slog.String(logkey.ProductID, req.ProductID))
	c.JSON(http.StatusCreated, item)
}

// UpdateCartItem sets an absolute quantity. Quantities below 1 are rejected;
// removal is the explicit DELETE call, never a side effect of an update.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	traceID := traceID(c)
	itemID := c.Param("id")

	var req updateCartItemRequest
	if !bindJSON(c, traceID, &req) {
		return
	}

	item, err := h.c.UpdateQuantity(c.Request.Context(), itemID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Quantity must be at least 1"})
		case errors.Is(err, cart.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		default:
			slog.Error("error updating cart item", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error updating cart item"})
		}
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteCart dispatches the two DELETE shapes sharing the /api/cart prefix:
// /api/cart/clear/:sessionId clears a whole cart, /api/cart/:id removes one
// line.
func (h *Handler) DeleteCart(c *gin.Context) {
	traceID := traceID(c)
	target := strings.Trim(c.Param("target"), "/")

	if sessionID, ok := strings.CutPrefix(target, "clear/"); ok {
		if err := h.c.Clear(c.Request.Context(), sessionID); err != nil {
			slog.Error("error clearing cart", slog.String(logkey.TraceID, traceID),
				slog.String(logkey.SessionID, sessionID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error clearing cart"})
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	removed, err := h.c.RemoveItem(c.Request.Context(), target)
	if err != nil {
		slog.Error("error removing cart item", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error removing from cart"})
		return
	}
	if !removed {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Cart item not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
