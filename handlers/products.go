package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"techstore/internal/products"
	"techstore/pkg/logkey"
)

// ListProducts serves GET /api/products. A search query takes precedence
// over the category/featured filters, mirroring the storefront UI contract.
func (h *Handler) ListProducts(c *gin.Context) {
	traceID := traceID(c)

	var (
		list []products.Product
		err  error
	)
	if search := c.Query("search"); search != "" {
		list, err = h.p.Search(c.Request.Context(), search)
	} else {
		filter := products.Filter{Category: c.Query("category")}
		if v := c.Query("featured"); v != "" {
			if featured, perr := strconv.ParseBool(v); perr == nil {
				filter.Featured = &featured
			}
		}
		list, err = h.p.List(c.Request.Context(), filter)
	}
	if err != nil {
		slog.Error("error fetching products", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching products"})
		return
	}
	if list == nil {
		list = []products.Product{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceID := traceID(c)
	productID := c.Param("id")

	product, err := h.p.GetByID(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		slog.Error("error fetching product", slog.String(logkey.TraceID, traceID),
			slog.String(logkey.ProductID, productID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Error fetching product"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct adds a catalog entry. Not exercised by the storefront flows;
// kept for catalog administration.
func (h *Handler) CreateProduct(c *gin.Context) {
	traceID := traceID(c)

	var np products.NewProduct
	if !bindJSON(c, traceID, &np) {
		return
	}
	if !h.validateRequest(c, traceID, np) {
		return
	}
	if !np.Price.IsPositive() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Price must be positive"})
		return
	}

	product, err := h.p.Insert(c.Request.Context(), np)
	if err != nil {
		slog.Error("error inserting product", slog.String(logkey.TraceID, traceID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Product creation failed"})
		return
	}
	c.JSON(http.StatusCreated, product)
}
