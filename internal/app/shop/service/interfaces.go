package service

import (
	"context"
	"io"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
)

// AuthService отвечает за регистрацию, вход и профиль пользователя
type AuthService interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	ConfirmEmail(ctx context.Context, email, token string) error
	Login(ctx context.Context, email, password string) (string, error)
	GetAccount(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateAccount(ctx context.Context, userID uuid.UUID, req *entity.UpdateAccountRequest) (*entity.User, error)

	CreateContact(ctx context.Context, userID uuid.UUID, req *entity.CreateContactRequest) (*entity.Contact, error)
	GetContacts(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error)
	UpdateContact(ctx context.Context, userID uuid.UUID, req *entity.UpdateContactRequest) (*entity.Contact, error)
	DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CatalogService отвечает за чтение каталога покупателем
// и управление магазином партнёра
type CatalogService interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	GetShops(ctx context.Context) ([]entity.Shop, error)
	SearchProducts(ctx context.Context, shopID *uuid.UUID, categoryID *int64) ([]entity.ProductInfo, error)

	GetPartnerShop(ctx context.Context, userID uuid.UUID) (*entity.Shop, error)
	SetPartnerState(ctx context.Context, userID uuid.UUID, active bool) error
}

// ImportService отвечает за импорт прайс-листов партнёров
type ImportService interface {
	ImportCatalog(ctx context.Context, userID uuid.UUID, fileName string, src io.Reader) (*entity.ImportStats, error)
	SyncFromURL(ctx context.Context, userID uuid.UUID, url string) (*entity.ImportStats, error)
	SyncShop(ctx context.Context, shop *entity.Shop) (*entity.ImportStats, error)
	GetTask(ctx context.Context, taskID string) (*entity.ImportTask, error)
}

// OrderService отвечает за корзину и жизненный цикл заказа
type OrderService interface {
	GetBasket(ctx context.Context, userID uuid.UUID) (*entity.OrderResponse, error)
	AddBasketItems(ctx context.Context, userID uuid.UUID, itemsJSON string) (int, error)
	UpdateBasketItems(ctx context.Context, userID uuid.UUID, itemsJSON string) (int64, error)
	DeleteBasketItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	ConfirmOrder(ctx context.Context, userID, orderID, contactID uuid.UUID) error
	GetOrders(ctx context.Context, userID uuid.UUID) ([]entity.OrderResponse, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.OrderResponse, error)

	GetPartnerOrders(ctx context.Context, partnerUserID uuid.UUID) ([]entity.OrderResponse, error)
	UpdateOrderState(ctx context.Context, partnerUserID, orderID uuid.UUID, state entity.OrderState) error
}
