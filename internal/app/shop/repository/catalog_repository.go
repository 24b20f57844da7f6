package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository создает новый репозиторий каталога
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// isUniqueViolation проверяет нарушение уникального ограничения PostgreSQL
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetOrCreateShop возвращает магазин по имени и владельцу, создавая при отсутствии
// Параллельные вызовы сходятся на уникальном ограничении (name, user_id):
// проигравший гонку повторяет выборку
func (r *catalogRepository) GetOrCreateShop(ctx context.Context, name string, userID *uuid.UUID) (*entity.Shop, error) {
	var shop entity.Shop

	q := r.db.WithContext(ctx).Where("name = ?", name)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	} else {
		q = q.Where("user_id IS NULL")
	}

	err := q.First(&shop).Error
	if err == nil {
		return &shop, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	shop = entity.Shop{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
		UserID:   userID,
	}

	if err := r.db.WithContext(ctx).Create(&shop).Error; err != nil {
		if isUniqueViolation(err) {
			// Магазин создан конкурентно, перечитываем
			if err := q.First(&shop).Error; err != nil {
				return nil, fmt.Errorf("failed to get shop after conflict: %w", err)
			}
			return &shop, nil
		}
		return nil, fmt.Errorf("failed to create shop: %w", err)
	}

	return &shop, nil
}

// GetShopByID получает магазин по ID
func (r *catalogRepository) GetShopByID(ctx context.Context, id uuid.UUID) (*entity.Shop, error) {
	var shop entity.Shop
	err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

// GetShopByUser получает магазин владельца-партнёра
func (r *catalogRepository) GetShopByUser(ctx context.Context, userID uuid.UUID) (*entity.Shop, error) {
	var shop entity.Shop
	err := r.db.WithContext(ctx).First(&shop, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop by user: %w", err)
	}
	return &shop, nil
}

// SetShopState включает или выключает приём заказов магазином
func (r *catalogRepository) SetShopState(ctx context.Context, userID uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(&entity.Shop{}).
		Where("user_id = ?", userID).
		Update("is_active", active)

	if result.Error != nil {
		return fmt.Errorf("failed to set shop state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShopNotFound
	}

	return nil
}

// UpdateShopURL сохраняет URL прайс-листа магазина
// Магазины с непустым URL попадают в периодическую синхронизацию
func (r *catalogRepository) UpdateShopURL(ctx context.Context, shopID uuid.UUID, url string) error {
	result := r.db.WithContext(ctx).Model(&entity.Shop{}).
		Where("id = ?", shopID).
		Update("url", url)

	if result.Error != nil {
		return fmt.Errorf("failed to update shop url: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrShopNotFound
	}

	return nil
}

// GetActiveShops получает магазины, принимающие заказы
func (r *catalogRepository) GetActiveShops(ctx context.Context) ([]entity.Shop, error) {
	var shops []entity.Shop
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get active shops: %w", err)
	}
	return shops, nil
}

// GetShopsWithURL получает магазины с настроенным URL прайс-листа
// Используется cron задачей периодической синхронизации
func (r *catalogRepository) GetShopsWithURL(ctx context.Context) ([]entity.Shop, error) {
	var shops []entity.Shop
	err := r.db.WithContext(ctx).Where("url <> ''").Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get shops with url: %w", err)
	}
	return shops, nil
}

// GetOrCreateCategory возвращает категорию по внешнему id, создавая при отсутствии
// Имя существующей категории не перезаписывается
func (r *catalogRepository) GetOrCreateCategory(ctx context.Context, id int64, name string) (*entity.Category, error) {
	var category entity.Category

	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category = entity.Category{ID: id, Name: name}
	if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isUniqueViolation(err) {
			if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
				return nil, fmt.Errorf("failed to get category after conflict: %w", err)
			}
			return &category, nil
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &category, nil
}

// AttachCategoryToShop идемпотентно связывает категорию с магазином
func (r *catalogRepository) AttachCategoryToShop(ctx context.Context, categoryID int64, shopID uuid.UUID) error {
	err := r.db.WithContext(ctx).Exec(
		`INSERT INTO category_shops (category_id, shop_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		categoryID, shopID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to attach category to shop: %w", err)
	}
	return nil
}

// GetAllCategories получает все категории отсортированные по имени
// Результат кешируется в Redis на стороне service layer
func (r *catalogRepository) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	var categories []entity.Category
	err := r.db.WithContext(ctx).Order("name").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetOrCreateProduct возвращает товар по (name, category), создавая при отсутствии
func (r *catalogRepository) GetOrCreateProduct(ctx context.Context, name string, categoryID int64) (*entity.Product, error) {
	var product entity.Product

	err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product = entity.Product{ID: uuid.New(), Name: name, CategoryID: categoryID}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		if isUniqueViolation(err) {
			if err := r.db.WithContext(ctx).
				Where("name = ? AND category_id = ?", name, categoryID).
				First(&product).Error; err != nil {
				return nil, fmt.Errorf("failed to get product after conflict: %w", err)
			}
			return &product, nil
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return &product, nil
}

// UpsertProductInfo создает или обновляет позицию магазина по ключу
// (product_id, shop_id, external_id), last-writer-wins по обновляемым полям
// Возвращает created=true если строка была создана
func (r *catalogRepository) UpsertProductInfo(ctx context.Context, info *entity.ProductInfo) (bool, error) {
	var existing entity.ProductInfo

	err := r.db.WithContext(ctx).
		Where("product_id = ? AND shop_id = ? AND external_id = ?",
			info.ProductID, info.ShopID, info.ExternalID).
		First(&existing).Error

	if err == nil {
		result := r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"model":     info.Model,
			"price":     info.Price,
			"price_rrc": info.PriceRRC,
			"quantity":  info.Quantity,
			"discount":  info.Discount,
		})
		if result.Error != nil {
			return false, fmt.Errorf("failed to update product info: %w", result.Error)
		}
		info.ID = existing.ID
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to get product info: %w", err)
	}

	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}

	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		if isUniqueViolation(err) {
			// Конкурентная вставка по тому же ключу, повторяем как обновление
			return r.UpsertProductInfo(ctx, info)
		}
		return false, fmt.Errorf("failed to create product info: %w", err)
	}

	return true, nil
}

// CreateProductInfo вставляет позицию без проверки существования
// Используется replace-all синхронизацией после DeleteShopListings
func (r *catalogRepository) CreateProductInfo(ctx context.Context, info *entity.ProductInfo) error {
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(info).Error; err != nil {
		return fmt.Errorf("failed to create product info: %w", err)
	}
	return nil
}

// DeleteShopListings удаляет все позиции магазина
// Характеристики удаляются каскадно по внешнему ключу
func (r *catalogRepository) DeleteShopListings(ctx context.Context, shopID uuid.UUID) error {
	err := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Delete(&entity.ProductInfo{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete shop listings: %w", err)
	}
	return nil
}

// GetOrCreateParameter возвращает характеристику по имени, создавая лениво
func (r *catalogRepository) GetOrCreateParameter(ctx context.Context, name string) (*entity.Parameter, error) {
	var parameter entity.Parameter

	err := r.db.WithContext(ctx).First(&parameter, "name = ?", name).Error
	if err == nil {
		return &parameter, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get parameter: %w", err)
	}

	parameter = entity.Parameter{ID: uuid.New(), Name: name}
	if err := r.db.WithContext(ctx).Create(&parameter).Error; err != nil {
		if isUniqueViolation(err) {
			if err := r.db.WithContext(ctx).First(&parameter, "name = ?", name).Error; err != nil {
				return nil, fmt.Errorf("failed to get parameter after conflict: %w", err)
			}
			return &parameter, nil
		}
		return nil, fmt.Errorf("failed to create parameter: %w", err)
	}

	return &parameter, nil
}

// UpsertProductParameter создает или обновляет значение характеристики
// по ключу (product_info_id, parameter_id)
func (r *catalogRepository) UpsertProductParameter(ctx context.Context, param *entity.ProductParameter) error {
	if param.ID == uuid.Nil {
		param.ID = uuid.New()
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_info_id"}, {Name: "parameter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(param).Error

	if err != nil {
		return fmt.Errorf("failed to upsert product parameter: %w", err)
	}

	return nil
}

// SearchProducts ищет позиции активных магазинов с опциональными фильтрами
// Подгружает товар с категорией, магазин и характеристики
func (r *catalogRepository) SearchProducts(ctx context.Context, shopID *uuid.UUID, categoryID *int64) ([]entity.ProductInfo, error) {
	defer metrics.ObserveDbQuery("select", "product_infos", time.Now())

	q := r.db.WithContext(ctx).
		Joins("JOIN shops ON shops.id = product_infos.shop_id AND shops.is_active = true")

	if shopID != nil {
		q = q.Where("product_infos.shop_id = ?", *shopID)
	}
	if categoryID != nil {
		q = q.Joins("JOIN products ON products.id = product_infos.product_id").
			Where("products.category_id = ?", *categoryID)
	}

	var infos []entity.ProductInfo
	err := q.
		Preload("Product.Category").
		Preload("Shop").
		Preload("Parameters.Parameter").
		Find(&infos).Error
	if err != nil {
		metrics.IncDbError("select")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return infos, nil
}
