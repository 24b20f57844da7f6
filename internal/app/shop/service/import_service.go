package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"
	"orderservice/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type importService struct {
	catalog repository.CatalogRepository
	cache   util.CategoryCache
	tasks   repository.ImportTaskRepository
	client  *http.Client
}

// NewImportService создает сервис импорта прайс-листов
func NewImportService(catalog repository.CatalogRepository, cache util.CategoryCache, tasks repository.ImportTaskRepository, client *http.Client) ImportService {
	if client == nil {
		client = http.DefaultClient
	}
	return &importService{
		catalog: catalog,
		cache:   cache,
		tasks:   tasks,
		client:  client,
	}
}

// GetTask возвращает статус фоновой задачи импорта
func (s *importService) GetTask(ctx context.Context, taskID string) (*entity.ImportTask, error) {
	return s.tasks.GetByID(ctx, taskID)
}

// ImportCatalog выполняет merge-импорт загруженного прайс-листа
// Существующие позиции обновляются по ключу (product, shop, external_id),
// позиции не из файла остаются нетронутыми
// Ошибки отдельных строк считаются в stats.Errors и не прерывают импорт
func (s *importService) ImportCatalog(ctx context.Context, userID uuid.UUID, fileName string, src io.Reader) (*entity.ImportStats, error) {
	if err := checkFormat(fileName); err != nil {
		return nil, err
	}

	priceList, err := parsePriceList(src)
	if err != nil {
		return nil, err
	}

	shop, err := s.catalog.GetOrCreateShop(ctx, priceList.Shop, &userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shop: %w", err)
	}

	stats, err := s.applyMerge(ctx, shop, priceList)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)

	logger.Info().
		Str("shop", shop.Name).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("errors", stats.Errors).
		Msg("price list imported")

	return stats, nil
}

// SyncFromURL скачивает прайс-лист по URL и полностью заменяет каталог магазина
// URL сохраняется у магазина для периодической фоновой синхронизации
func (s *importService) SyncFromURL(ctx context.Context, userID uuid.UUID, url string) (*entity.ImportStats, error) {
	priceList, err := s.fetchPriceList(ctx, url)
	if err != nil {
		return nil, err
	}

	shop, err := s.catalog.GetOrCreateShop(ctx, priceList.Shop, &userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shop: %w", err)
	}

	if err := s.catalog.UpdateShopURL(ctx, shop.ID, url); err != nil {
		return nil, fmt.Errorf("failed to save shop url: %w", err)
	}

	stats, err := s.applyReplace(ctx, shop, priceList)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)

	logger.Info().
		Str("shop", shop.Name).
		Str("url", url).
		Int("created", stats.Created).
		Int("errors", stats.Errors).
		Msg("price list synced from url")

	return stats, nil
}

// SyncShop повторно синхронизирует магазин по сохранённому URL
// Вызывается cron задачей для всех магазинов с непустым URL
func (s *importService) SyncShop(ctx context.Context, shop *entity.Shop) (*entity.ImportStats, error) {
	if shop.URL == "" {
		return nil, fmt.Errorf("%w: shop has no url", ErrMalformedSource)
	}

	priceList, err := s.fetchPriceList(ctx, shop.URL)
	if err != nil {
		return nil, err
	}

	stats, err := s.applyReplace(ctx, shop, priceList)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)

	return stats, nil
}

// checkFormat проверяет расширение файла
// Поддерживается только YAML; csv и json отклоняются явной ошибкой,
// а не молчаливым пропуском строк
func checkFormat(fileName string) error {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		return nil
	default:
		return ErrUnsupportedFormat
	}
}

// parsePriceList разбирает YAML прайс-лист
func parsePriceList(src io.Reader) (*entity.PriceListFile, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read price list: %w", err)
	}

	var priceList entity.PriceListFile
	if err := yaml.Unmarshal(data, &priceList); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	if priceList.Shop == "" {
		return nil, fmt.Errorf("%w: missing shop name", ErrMalformedSource)
	}

	return &priceList, nil
}

// fetchPriceList скачивает и разбирает прайс-лист по URL
func (s *importService) fetchPriceList(ctx context.Context, url string) (*entity.PriceListFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: source returned status %d", ErrMalformedSource, resp.StatusCode)
	}

	return parsePriceList(resp.Body)
}

// applyCategories создает категории и привязывает их к магазину
// Возвращает множество объявленных id для проверки строк товаров
func (s *importService) applyCategories(ctx context.Context, shop *entity.Shop, priceList *entity.PriceListFile, stats *entity.ImportStats) map[int64]bool {
	declared := make(map[int64]bool, len(priceList.Categories))

	for _, c := range priceList.Categories {
		if c.Name == "" {
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		category, err := s.catalog.GetOrCreateCategory(ctx, c.ID, c.Name)
		if err != nil {
			logger.Error().Err(err).Int64("category_id", c.ID).Msg("failed to import category")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		if err := s.catalog.AttachCategoryToShop(ctx, category.ID, shop.ID); err != nil {
			logger.Error().Err(err).Int64("category_id", c.ID).Msg("failed to attach category to shop")
		}

		declared[c.ID] = true
	}

	return declared
}

// validateGood проверяет строку товара перед записью
func validateGood(good *entity.PriceListGood, declared map[int64]bool) error {
	if good.Name == "" {
		return fmt.Errorf("missing product name")
	}
	if !declared[good.Category] {
		return fmt.Errorf("unknown category %d", good.Category)
	}
	if good.Price < 0 {
		return fmt.Errorf("negative price")
	}
	if good.Quantity < 0 {
		return fmt.Errorf("negative quantity")
	}
	return nil
}

// buildProductInfo собирает позицию из строки прайс-листа
// price_rrc по умолчанию равен price
func buildProductInfo(good *entity.PriceListGood, productID, shopID uuid.UUID) *entity.ProductInfo {
	price := decimal.NewFromFloat(good.Price)
	priceRRC := price
	if good.PriceRRC != nil {
		priceRRC = decimal.NewFromFloat(*good.PriceRRC)
	}

	return &entity.ProductInfo{
		ProductID:  productID,
		ShopID:     shopID,
		ExternalID: good.ID,
		Model:      good.Model,
		Price:      price,
		PriceRRC:   priceRRC,
		Quantity:   good.Quantity,
		Discount:   good.Discount,
	}
}

// applyGoodParameters создает характеристики позиции
func (s *importService) applyGoodParameters(ctx context.Context, infoID uuid.UUID, params map[string]string) error {
	for name, value := range params {
		parameter, err := s.catalog.GetOrCreateParameter(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve parameter %q: %w", name, err)
		}

		pp := &entity.ProductParameter{
			ProductInfoID: infoID,
			ParameterID:   parameter.ID,
			Value:         value,
		}
		if err := s.catalog.UpsertProductParameter(ctx, pp); err != nil {
			return fmt.Errorf("failed to upsert parameter %q: %w", name, err)
		}
	}

	return nil
}

// applyMerge выполняет merge-upsert строк прайс-листа
func (s *importService) applyMerge(ctx context.Context, shop *entity.Shop, priceList *entity.PriceListFile) (*entity.ImportStats, error) {
	stats := &entity.ImportStats{}

	declared := s.applyCategories(ctx, shop, priceList, stats)

	for i := range priceList.Goods {
		good := &priceList.Goods[i]

		if err := validateGood(good, declared); err != nil {
			logger.Warn().Err(err).Int64("external_id", good.ID).Msg("skipping price list row")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		product, err := s.catalog.GetOrCreateProduct(ctx, good.Name, good.Category)
		if err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to resolve product")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		info := buildProductInfo(good, product.ID, shop.ID)

		created, err := s.catalog.UpsertProductInfo(ctx, info)
		if err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to upsert product info")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		if err := s.applyGoodParameters(ctx, info.ID, good.Parameters); err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to import parameters")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		if created {
			stats.Created++
			metrics.ImportRows.WithLabelValues("created").Inc()
		} else {
			stats.Updated++
			metrics.ImportRows.WithLabelValues("updated").Inc()
		}
	}

	return stats, nil
}

// applyReplace полностью заменяет каталог магазина строками прайс-листа
func (s *importService) applyReplace(ctx context.Context, shop *entity.Shop, priceList *entity.PriceListFile) (*entity.ImportStats, error) {
	stats := &entity.ImportStats{}

	if err := s.catalog.DeleteShopListings(ctx, shop.ID); err != nil {
		return nil, fmt.Errorf("failed to clear shop listings: %w", err)
	}

	declared := s.applyCategories(ctx, shop, priceList, stats)

	for i := range priceList.Goods {
		good := &priceList.Goods[i]

		if err := validateGood(good, declared); err != nil {
			logger.Warn().Err(err).Int64("external_id", good.ID).Msg("skipping price list row")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		product, err := s.catalog.GetOrCreateProduct(ctx, good.Name, good.Category)
		if err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to resolve product")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		info := buildProductInfo(good, product.ID, shop.ID)

		if err := s.catalog.CreateProductInfo(ctx, info); err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to create product info")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		if err := s.applyGoodParameters(ctx, info.ID, good.Parameters); err != nil {
			logger.Error().Err(err).Int64("external_id", good.ID).Msg("failed to import parameters")
			stats.Errors++
			metrics.ImportRows.WithLabelValues("error").Inc()
			continue
		}

		stats.Created++
		metrics.ImportRows.WithLabelValues("created").Inc()
	}

	return stats, nil
}

// invalidateCache сбрасывает кеш категорий после изменения каталога
func (s *importService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate categories cache")
	}
}
