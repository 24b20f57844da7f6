package handler

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/processor"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"
	"orderservice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PartnerHandler обрабатывает операции магазина-партнёра
type PartnerHandler struct {
	importer service.ImportService
	orders   service.OrderService
	catalog  service.CatalogService
	pool     *processor.ImportWorkerPool
	tempDir  string
	validate *validator.Validate
}

// NewPartnerHandler создает handler партнёра
func NewPartnerHandler(
	importer service.ImportService,
	orders service.OrderService,
	catalog service.CatalogService,
	pool *processor.ImportWorkerPool,
	tempDir string,
) *PartnerHandler {
	return &PartnerHandler{
		importer: importer,
		orders:   orders,
		catalog:  catalog,
		pool:     pool,
		tempDir:  tempDir,
		validate: validator.New(),
	}
}

// UpdatePriceList обрабатывает POST /partner/update
// Скачивает прайс-лист по URL и полностью заменяет каталог магазина
func (h *PartnerHandler) UpdatePriceList(c *gin.Context) {
	var req entity.PartnerUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.importer.SyncFromURL(c.Request.Context(), userID(c), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrMalformedSource) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Status": true, "stats": stats})
}

// GetState обрабатывает GET /partner/state
func (h *PartnerHandler) GetState(c *gin.Context) {
	shop, err := h.catalog.GetPartnerShop(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			respondError(c, http.StatusNotFound, "shop not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, shop)
}

// SetState обрабатывает POST /partner/state
func (h *PartnerHandler) SetState(c *gin.Context) {
	var req entity.PartnerStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.SetPartnerState(c.Request.Context(), userID(c), *req.State); err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			respondError(c, http.StatusNotFound, "shop not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	respondOK(c, http.StatusOK)
}

// GetOrders обрабатывает GET /partner/orders
// Возвращает заказы, содержащие позиции магазина партнёра
func (h *PartnerHandler) GetOrders(c *gin.Context) {
	orders, err := h.orders.GetPartnerOrders(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, orders)
}

type updateStateRequest struct {
	State entity.OrderState `json:"state" validate:"required,oneof=confirmed assembled sent delivered canceled"`
}

// UpdateOrderState обрабатывает PATCH /partner/orders/:id
// Переход валидируется по графу состояний заказа
func (h *PartnerHandler) UpdateOrderState(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	err = h.orders.UpdateOrderState(c.Request.Context(), userID(c), orderID, req.State)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondOK(c, http.StatusOK)
}

// ImportProducts обрабатывает POST /shops/:id/import_products
// Файл сохраняется во временный каталог, импорт выполняется в фоне,
// клиент сразу получает task_id
func (h *PartnerHandler) ImportProducts(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid shop id")
		return
	}

	shop, err := h.catalog.GetPartnerShop(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, repository.ErrShopNotFound) {
			respondError(c, http.StatusNotFound, "shop not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if shop.ID != shopID {
		respondError(c, http.StatusForbidden, "not your shop")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer src.Close()

	tmp, err := os.CreateTemp(h.tempDir, "pricelist-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	tmp.Close()

	taskID, err := h.pool.Submit(c.Request.Context(), userID(c), fileHeader.Filename, tmp.Name())
	if err != nil {
		os.Remove(tmp.Name())
		if errors.Is(err, processor.ErrQueueFull) {
			respondError(c, http.StatusServiceUnavailable, "import queue is full")
			return
		}
		logger.Error().Err(err).Msg("failed to submit import task")
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusAccepted, entity.ImportTaskResponse{Status: true, TaskID: taskID})
}

// GetImportTask обрабатывает GET /shops/import_tasks/:task_id
func (h *PartnerHandler) GetImportTask(c *gin.Context) {
	taskID := c.Param("task_id")

	task, err := h.importer.GetTask(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			respondError(c, http.StatusNotFound, "task not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	// Статус задачи видит только её автор
	if task.UserID != userID(c).String() {
		respondError(c, http.StatusNotFound, "task not found")
		return
	}

	c.JSON(http.StatusOK, task)
}
