package mocks

import (
	"context"
	"time"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository мок репозитория пользователей для тестов service layer
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Activate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenRepository мок репозитория токенов подтверждения почты
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *entity.ConfirmEmailToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByEmailAndKey(ctx context.Context, email, key string) (*entity.ConfirmEmailToken, error) {
	args := m.Called(ctx, email, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ConfirmEmailToken), args.Error(1)
}

func (m *MockTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// MockContactRepository мок репозитория контактов
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Contact), args.Error(1)
}

func (m *MockContactRepository) Update(ctx context.Context, contact *entity.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalogRepository мок репозитория каталога
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetOrCreateShop(ctx context.Context, name string, userID *uuid.UUID) (*entity.Shop, error) {
	args := m.Called(ctx, name, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Shop), args.Error(1)
}

func (m *MockCatalogRepository) GetShopByID(ctx context.Context, id uuid.UUID) (*entity.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Shop), args.Error(1)
}

func (m *MockCatalogRepository) GetShopByUser(ctx context.Context, userID uuid.UUID) (*entity.Shop, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Shop), args.Error(1)
}

func (m *MockCatalogRepository) SetShopState(ctx context.Context, userID uuid.UUID, active bool) error {
	args := m.Called(ctx, userID, active)
	return args.Error(0)
}

func (m *MockCatalogRepository) UpdateShopURL(ctx context.Context, shopID uuid.UUID, url string) error {
	args := m.Called(ctx, shopID, url)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetActiveShops(ctx context.Context) ([]entity.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Shop), args.Error(1)
}

func (m *MockCatalogRepository) GetShopsWithURL(ctx context.Context) ([]entity.Shop, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Shop), args.Error(1)
}

func (m *MockCatalogRepository) GetOrCreateCategory(ctx context.Context, id int64, name string) (*entity.Category, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogRepository) AttachCategoryToShop(ctx context.Context, categoryID int64, shopID uuid.UUID) error {
	args := m.Called(ctx, categoryID, shopID)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCatalogRepository) GetOrCreateProduct(ctx context.Context, name string, categoryID int64) (*entity.Product, error) {
	args := m.Called(ctx, name, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogRepository) UpsertProductInfo(ctx context.Context, info *entity.ProductInfo) (bool, error) {
	args := m.Called(ctx, info)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) CreateProductInfo(ctx context.Context, info *entity.ProductInfo) error {
	args := m.Called(ctx, info)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteShopListings(ctx context.Context, shopID uuid.UUID) error {
	args := m.Called(ctx, shopID)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetOrCreateParameter(ctx context.Context, name string) (*entity.Parameter, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Parameter), args.Error(1)
}

func (m *MockCatalogRepository) UpsertProductParameter(ctx context.Context, param *entity.ProductParameter) error {
	args := m.Called(ctx, param)
	return args.Error(0)
}

func (m *MockCatalogRepository) SearchProducts(ctx context.Context, shopID *uuid.UUID, categoryID *int64) ([]entity.ProductInfo, error) {
	args := m.Called(ctx, shopID, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ProductInfo), args.Error(1)
}

// MockOrderRepository мок репозитория заказов
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetBasketWithItems(ctx context.Context, userID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) CreateItem(ctx context.Context, item *entity.OrderItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteItems(ctx context.Context, orderID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int) (int64, error) {
	args := m.Called(ctx, orderID, itemID, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Confirm(ctx context.Context, orderID, userID, contactID uuid.UUID) (bool, error) {
	args := m.Called(ctx, orderID, userID, contactID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) UpdateState(ctx context.Context, orderID uuid.UUID, state entity.OrderState) error {
	args := m.Called(ctx, orderID, state)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByIDForPartner(ctx context.Context, orderID, partnerUserID uuid.UUID) (*entity.Order, error) {
	args := m.Called(ctx, orderID, partnerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

func (m *MockOrderRepository) GetPartnerOrders(ctx context.Context, partnerUserID uuid.UUID) ([]entity.Order, error) {
	args := m.Called(ctx, partnerUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Order), args.Error(1)
}

// MockImportTaskRepository мок репозитория задач импорта
type MockImportTaskRepository struct {
	mock.Mock
}

func (m *MockImportTaskRepository) Create(ctx context.Context, task *entity.ImportTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockImportTaskRepository) MarkRunning(ctx context.Context, taskID string) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

func (m *MockImportTaskRepository) Finish(ctx context.Context, taskID string, stats *entity.ImportStats, errText string) error {
	args := m.Called(ctx, taskID, stats, errText)
	return args.Error(0)
}

func (m *MockImportTaskRepository) GetByID(ctx context.Context, taskID string) (*entity.ImportTask, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ImportTask), args.Error(1)
}
