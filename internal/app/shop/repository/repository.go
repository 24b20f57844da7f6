package repository

import (
	"context"
	"errors"
	"time"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrNotFound        = errors.New("not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrShopNotFound    = errors.New("shop not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrContactNotFound = errors.New("contact not found")
	ErrTokenNotFound   = errors.New("token not found")
	ErrTaskNotFound    = errors.New("import task not found")
	ErrDuplicateKey    = errors.New("duplicate key")
)

// UserRepository отвечает за пользователей в PostgreSQL (pgx)
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Activate(ctx context.Context, id uuid.UUID) error
}

// TokenRepository отвечает за одноразовые токены подтверждения почты
type TokenRepository interface {
	Create(ctx context.Context, token *entity.ConfirmEmailToken) error
	GetByEmailAndKey(ctx context.Context, email, key string) (*entity.ConfirmEmailToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

// ContactRepository отвечает за адреса доставки пользователей
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error)
	Update(ctx context.Context, contact *entity.Contact) error
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// CatalogRepository отвечает за каталог: магазины, категории, товары, позиции
// Все операции записи идемпотентны по естественному ключу: get-or-create
// либо upsert по уникальному ограничению
type CatalogRepository interface {
	GetOrCreateShop(ctx context.Context, name string, userID *uuid.UUID) (*entity.Shop, error)
	GetShopByID(ctx context.Context, id uuid.UUID) (*entity.Shop, error)
	GetShopByUser(ctx context.Context, userID uuid.UUID) (*entity.Shop, error)
	SetShopState(ctx context.Context, userID uuid.UUID, active bool) error
	UpdateShopURL(ctx context.Context, shopID uuid.UUID, url string) error
	GetActiveShops(ctx context.Context) ([]entity.Shop, error)
	GetShopsWithURL(ctx context.Context) ([]entity.Shop, error)

	GetOrCreateCategory(ctx context.Context, id int64, name string) (*entity.Category, error)
	AttachCategoryToShop(ctx context.Context, categoryID int64, shopID uuid.UUID) error
	GetAllCategories(ctx context.Context) ([]entity.Category, error)

	GetOrCreateProduct(ctx context.Context, name string, categoryID int64) (*entity.Product, error)
	UpsertProductInfo(ctx context.Context, info *entity.ProductInfo) (created bool, err error)
	CreateProductInfo(ctx context.Context, info *entity.ProductInfo) error
	DeleteShopListings(ctx context.Context, shopID uuid.UUID) error

	GetOrCreateParameter(ctx context.Context, name string) (*entity.Parameter, error)
	UpsertProductParameter(ctx context.Context, param *entity.ProductParameter) error

	SearchProducts(ctx context.Context, shopID *uuid.UUID, categoryID *int64) ([]entity.ProductInfo, error)
}

// OrderRepository отвечает за заказы и позиции корзины
type OrderRepository interface {
	GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*entity.Order, error)
	GetBasketWithItems(ctx context.Context, userID uuid.UUID) (*entity.Order, error)
	CreateItem(ctx context.Context, item *entity.OrderItem) error
	DeleteItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) (int64, error)
	UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int) (int64, error)
	Confirm(ctx context.Context, orderID, userID, contactID uuid.UUID) (bool, error)
	UpdateState(ctx context.Context, orderID uuid.UUID, state entity.OrderState) error
	GetByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*entity.Order, error)
	GetByIDForPartner(ctx context.Context, orderID, partnerUserID uuid.UUID) (*entity.Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetPartnerOrders(ctx context.Context, partnerUserID uuid.UUID) ([]entity.Order, error)
}

// ImportTaskRepository отвечает за статусы фоновых задач импорта в MongoDB
type ImportTaskRepository interface {
	Create(ctx context.Context, task *entity.ImportTask) error
	MarkRunning(ctx context.Context, taskID string) error
	Finish(ctx context.Context, taskID string, stats *entity.ImportStats, errText string) error
	GetByID(ctx context.Context, taskID string) (*entity.ImportTask, error)
}
