package service

import (
	"context"
	"errors"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"

	"github.com/google/uuid"
)

const categoriesCacheTTL = 10 * time.Minute

type catalogService struct {
	catalog repository.CatalogRepository
	cache   util.CategoryCache
}

// NewCatalogService создает сервис чтения каталога
func NewCatalogService(catalog repository.CatalogRepository, cache util.CategoryCache) CatalogService {
	return &catalogService{
		catalog: catalog,
		cache:   cache,
	}
}

// GetCategories возвращает категории, сначала пробуя кеш
// Недоступность Redis не ломает запрос, идём в базу
func (s *catalogService) GetCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err == nil {
		return categories, nil
	}
	if !errors.Is(err, util.ErrCacheMiss) {
		logger.Warn().Err(err).Msg("categories cache read failed")
	}

	categories, err = s.catalog.GetAllCategories(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("categories cache write failed")
	}

	return categories, nil
}

// GetShops возвращает магазины, принимающие заказы
func (s *catalogService) GetShops(ctx context.Context) ([]entity.Shop, error) {
	return s.catalog.GetActiveShops(ctx)
}

// SearchProducts ищет позиции активных магазинов по опциональным фильтрам
func (s *catalogService) SearchProducts(ctx context.Context, shopID *uuid.UUID, categoryID *int64) ([]entity.ProductInfo, error) {
	return s.catalog.SearchProducts(ctx, shopID, categoryID)
}

// GetPartnerShop возвращает магазин пользователя-партнёра
func (s *catalogService) GetPartnerShop(ctx context.Context, userID uuid.UUID) (*entity.Shop, error) {
	return s.catalog.GetShopByUser(ctx, userID)
}

// SetPartnerState включает или выключает приём заказов магазином партнёра
func (s *catalogService) SetPartnerState(ctx context.Context, userID uuid.UUID, active bool) error {
	return s.catalog.SetShopState(ctx, userID, active)
}
