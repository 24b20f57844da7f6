package handler

import (
	"errors"
	"net/http"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BasketHandler обрабатывает операции с корзиной
type BasketHandler struct {
	orders   service.OrderService
	validate *validator.Validate
}

// NewBasketHandler создает handler корзины
func NewBasketHandler(orders service.OrderService) *BasketHandler {
	return &BasketHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

// GetBasket обрабатывает GET /basket
func (h *BasketHandler) GetBasket(c *gin.Context) {
	basket, err := h.orders.GetBasket(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, basket)
}

// AddItems обрабатывает POST /basket
// Поле items содержит JSON-строку со списком позиций
func (h *BasketHandler) AddItems(c *gin.Context) {
	var req entity.BasketItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.orders.AddBasketItems(c.Request.Context(), userID(c), req.Items)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemsFormat):
			respondError(c, http.StatusBadRequest, "invalid items format")
		case errors.Is(err, service.ErrDuplicateBasketItem):
			respondError(c, http.StatusBadRequest, "item already in basket")
		case errors.Is(err, repository.ErrNotFound):
			respondError(c, http.StatusNotFound, "product not found")
		default:
			respondError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"Status": true, "created": created})
}

// UpdateItems обрабатывает PUT /basket, меняет количества позиций
func (h *BasketHandler) UpdateItems(c *gin.Context) {
	var req entity.BasketItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.orders.UpdateBasketItems(c.Request.Context(), userID(c), req.Items)
	if err != nil {
		if errors.Is(err, service.ErrItemsFormat) {
			respondError(c, http.StatusBadRequest, "invalid items format")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Status": true, "updated": updated})
}

// DeleteItems обрабатывает DELETE /basket
// Поле items содержит строку id через запятую
func (h *BasketHandler) DeleteItems(c *gin.Context) {
	var req entity.BasketItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ids, err := parseIDList(req.Items)
	if err != nil || len(ids) == 0 {
		respondError(c, http.StatusBadRequest, "invalid items list")
		return
	}

	deleted, err := h.orders.DeleteBasketItems(c.Request.Context(), userID(c), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Status": true, "deleted": deleted})
}
