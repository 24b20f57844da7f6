package handler

import (
	"strings"

	"orderservice/internal/app/shop/entity"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError отправляет конверт с ошибкой
func respondError(c *gin.Context, code int, errs interface{}) {
	c.JSON(code, entity.StatusResponse{Status: false, Errors: errs})
}

// respondOK отправляет успешный конверт
func respondOK(c *gin.Context, code int) {
	c.JSON(code, entity.StatusResponse{Status: true})
}

// parseIDList разбирает строку id через запятую в список uuid
// Формат items="id1,id2" идёт из исходного контракта API
func parseIDList(items string) ([]uuid.UUID, error) {
	parts := strings.Split(items, ",")

	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
