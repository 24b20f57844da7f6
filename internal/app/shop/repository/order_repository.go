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
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// GetOrCreateBasket возвращает корзину пользователя, создавая при отсутствии
// У пользователя не больше одной корзины; гонка создания разрешается
// повторной выборкой после нарушения уникальности
func (r *orderRepository) GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, entity.OrderStateBasket).
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get basket: %w", err)
	}

	order = entity.Order{
		ID:     uuid.New(),
		UserID: userID,
		State:  entity.OrderStateBasket,
	}

	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			if err := r.db.WithContext(ctx).
				Where("user_id = ? AND state = ?", userID, entity.OrderStateBasket).
				First(&order).Error; err != nil {
				return nil, fmt.Errorf("failed to get basket after conflict: %w", err)
			}
			return &order, nil
		}
		return nil, fmt.Errorf("failed to create basket: %w", err)
	}

	return &order, nil
}

// GetBasketWithItems возвращает корзину с позициями и данными товаров
// Если корзины нет, возвращает ErrOrderNotFound
func (r *orderRepository) GetBasketWithItems(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Preload("Items.ProductInfo.Parameters.Parameter").
		Where("user_id = ? AND state = ?", userID, entity.OrderStateBasket).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get basket with items: %w", err)
	}

	return &order, nil
}

// CreateItem добавляет позицию в корзину
// Повторное добавление той же позиции нарушает уникальность (order_id, product_info_id)
func (r *orderRepository) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return ErrNotFound
		}
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// DeleteItems удаляет позиции корзины по списку id
// Чужие id молча игнорируются, возвращается число удалённых строк
func (r *orderRepository) DeleteItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("order_id = ? AND id IN ?", orderID, ids).
		Delete(&entity.OrderItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete order items: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// UpdateItemQuantity меняет количество позиции в пределах одной корзины
func (r *orderRepository) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.OrderItem{}).
		Where("order_id = ? AND id = ?", orderID, itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update item quantity: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// Confirm атомарно переводит корзину в состояние new и привязывает контакт
// Условие state = 'basket' в WHERE гарантирует ровно одно подтверждение:
// повторный вызов не затронет ни одной строки
func (r *orderRepository) Confirm(ctx context.Context, orderID, userID, contactID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND user_id = ? AND state = ?", orderID, userID, entity.OrderStateBasket).
		Updates(map[string]interface{}{
			"state":      entity.OrderStateNew,
			"contact_id": contactID,
		})

	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == "23503" {
			return false, ErrContactNotFound
		}
		return false, fmt.Errorf("failed to confirm order: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// UpdateState переводит заказ в новое состояние
// Допустимость перехода проверяет service layer
func (r *orderRepository) UpdateState(ctx context.Context, orderID uuid.UUID, state entity.OrderState) error {
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ?", orderID).
		Update("state", state)
	if result.Error != nil {
		return fmt.Errorf("failed to update order state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// GetByIDForUser возвращает заказ пользователя с позициями и контактом
func (r *orderRepository) GetByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Items.ProductInfo.Shop").
		Preload("Contact").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

// GetByIDForPartner возвращает заказ, если в нём есть позиции магазина партнёра
func (r *orderRepository) GetByIDForPartner(ctx context.Context, orderID, partnerUserID uuid.UUID) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("orders.id = ? AND shops.user_id = ? AND orders.state <> ?",
			orderID, partnerUserID, entity.OrderStateBasket).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get partner order: %w", err)
	}

	return &order, nil
}

// GetUserOrders возвращает оформленные заказы пользователя, корзина не включается
func (r *orderRepository) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	var orders []entity.Order

	err := r.db.WithContext(ctx).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Contact").
		Where("user_id = ? AND state <> ?", userID, entity.OrderStateBasket).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}

	return orders, nil
}

// GetPartnerOrders возвращает оформленные заказы, содержащие позиции магазина партнёра
func (r *orderRepository) GetPartnerOrders(ctx context.Context, partnerUserID uuid.UUID) ([]entity.Order, error) {
	defer metrics.ObserveDbQuery("select", "orders", time.Now())

	var orders []entity.Order

	err := r.db.WithContext(ctx).
		Distinct("orders.*").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN product_infos ON product_infos.id = order_items.product_info_id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("shops.user_id = ? AND orders.state <> ?", partnerUserID, entity.OrderStateBasket).
		Preload("Items.ProductInfo.Product.Category").
		Preload("Contact").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get partner orders: %w", err)
	}

	return orders, nil
}
