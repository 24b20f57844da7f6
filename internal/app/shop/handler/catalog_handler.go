package handler

import (
	"net/http"
	"strconv"

	"orderservice/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CatalogHandler обрабатывает публичное чтение каталога
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler создает handler каталога
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetCategories обрабатывает GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetShops обрабатывает GET /shops, возвращает только активные магазины
func (h *CatalogHandler) GetShops(c *gin.Context) {
	shops, err := h.catalog.GetShops(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, shops)
}

// SearchProducts обрабатывает GET /products?shop_id=&category_id=
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	var shopID *uuid.UUID
	if raw := c.Query("shop_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid shop_id")
			return
		}
		shopID = &id
	}

	var categoryID *int64
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = &id
	}

	products, err := h.catalog.SearchProducts(c.Request.Context(), shopID, categoryID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, products)
}
