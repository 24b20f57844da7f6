package handler

import (
	"errors"
	"net/http"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// OrderHandler обрабатывает заказы покупателя
type OrderHandler struct {
	orders   service.OrderService
	validate *validator.Validate
}

// NewOrderHandler создает handler заказов
func NewOrderHandler(orders service.OrderService) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		validate: validator.New(),
	}
}

// GetOrders обрабатывает GET /order, корзина не включается
func (h *OrderHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.GetOrders(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /order/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID(c), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, order)
}

// ConfirmOrder обрабатывает POST /order: перевод корзины в состояние new
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	var req entity.ConfirmOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err := h.orders.ConfirmOrder(c.Request.Context(), userID(c), req.ID, req.Contact)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrContactNotFound):
			respondError(c, http.StatusNotFound, "contact not found")
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrBasketEmpty):
			respondError(c, http.StatusBadRequest, "basket is empty")
		case errors.Is(err, service.ErrNotConfirmable):
			respondError(c, http.StatusBadRequest, "order cannot be confirmed")
		default:
			respondError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondOK(c, http.StatusOK)
}
