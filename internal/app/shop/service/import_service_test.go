package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository/mocks"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitWithWriter("test", "error", &strings.Builder{})
}

// noopCache - заглушка кеша категорий для тестов импорта
type noopCache struct{}

func (noopCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	return nil, util.ErrCacheMiss
}

func (noopCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	return nil
}

func (noopCache) Invalidate(ctx context.Context) error {
	return nil
}

const samplePriceList = `
shop: Связной
categories:
  - id: 224
    name: Смартфоны
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Смартфон Apple iPhone XS Max 512GB (золотистый)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Диагональ (дюйм)": "6.5"
  - id: 4216313
    category: 224
    model: apple/iphone/xr
    name: Смартфон Apple iPhone XR 256GB (красный)
    price: 65000
    quantity: 9
`

func newImportMocks(t *testing.T) (*mocks.MockCatalogRepository, ImportService) {
	t.Helper()

	catalogRepo := new(mocks.MockCatalogRepository)
	taskRepo := new(mocks.MockImportTaskRepository)
	svc := NewImportService(catalogRepo, noopCache{}, taskRepo, nil)

	return catalogRepo, svc
}

func setupCatalogExpectations(catalogRepo *mocks.MockCatalogRepository, shopID uuid.UUID) {
	shop := &entity.Shop{ID: shopID, Name: "Связной", IsActive: true}
	category := &entity.Category{ID: 224, Name: "Смартфоны"}
	parameter := &entity.Parameter{ID: uuid.New(), Name: "Диагональ (дюйм)"}

	catalogRepo.On("GetOrCreateShop", mock.Anything, "Связной", mock.Anything).Return(shop, nil)
	catalogRepo.On("GetOrCreateCategory", mock.Anything, int64(224), "Смартфоны").Return(category, nil)
	catalogRepo.On("AttachCategoryToShop", mock.Anything, int64(224), shopID).Return(nil)
	catalogRepo.On("GetOrCreateProduct", mock.Anything, mock.AnythingOfType("string"), int64(224)).
		Return(&entity.Product{ID: uuid.New(), CategoryID: 224}, nil)
	catalogRepo.On("GetOrCreateParameter", mock.Anything, "Диагональ (дюйм)").Return(parameter, nil)
	catalogRepo.On("UpsertProductParameter", mock.Anything, mock.AnythingOfType("*entity.ProductParameter")).Return(nil)
}

func TestImportCatalog_FirstImportCreatesRows(t *testing.T) {
	catalogRepo, svc := newImportMocks(t)
	shopID := uuid.New()
	setupCatalogExpectations(catalogRepo, shopID)

	catalogRepo.On("UpsertProductInfo", mock.Anything, mock.AnythingOfType("*entity.ProductInfo")).
		Return(true, nil)

	stats, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader(samplePriceList))

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 0, stats.Errors)
}

func TestImportCatalog_RepeatedImportOnlyUpdates(t *testing.T) {
	catalogRepo, svc := newImportMocks(t)
	shopID := uuid.New()
	setupCatalogExpectations(catalogRepo, shopID)

	// Повторный импорт того же файла: все строки уже существуют
	catalogRepo.On("UpsertProductInfo", mock.Anything, mock.AnythingOfType("*entity.ProductInfo")).
		Return(false, nil)

	stats, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader(samplePriceList))

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, 0, stats.Errors)
}

func TestImportCatalog_DefaultPriceRRC(t *testing.T) {
	catalogRepo, svc := newImportMocks(t)
	shopID := uuid.New()
	setupCatalogExpectations(catalogRepo, shopID)

	var infos []*entity.ProductInfo
	catalogRepo.On("UpsertProductInfo", mock.Anything, mock.AnythingOfType("*entity.ProductInfo")).
		Run(func(args mock.Arguments) {
			infos = append(infos, args.Get(1).(*entity.ProductInfo))
		}).
		Return(true, nil)

	_, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader(samplePriceList))
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// У первой позиции price_rrc задан явно, у второй равен price
	assert.Equal(t, "116990", infos[0].PriceRRC.String())
	assert.Equal(t, "65000", infos[1].PriceRRC.String())
	assert.Equal(t, "65000", infos[1].Price.String())
}

func TestImportCatalog_RowErrorDoesNotAbort(t *testing.T) {
	catalogRepo, svc := newImportMocks(t)
	shopID := uuid.New()

	priceList := `
shop: Связной
categories:
  - id: 224
    name: Смартфоны
goods:
  - id: 1
    category: 224
    name: Товар с ошибкой
    price: -5
    quantity: 1
  - id: 2
    category: 224
    name: Нормальный товар
    price: 100
    quantity: 1
`

	shop := &entity.Shop{ID: shopID, Name: "Связной"}
	catalogRepo.On("GetOrCreateShop", mock.Anything, "Связной", mock.Anything).Return(shop, nil)
	catalogRepo.On("GetOrCreateCategory", mock.Anything, int64(224), "Смартфоны").
		Return(&entity.Category{ID: 224, Name: "Смартфоны"}, nil)
	catalogRepo.On("AttachCategoryToShop", mock.Anything, int64(224), shopID).Return(nil)
	catalogRepo.On("GetOrCreateProduct", mock.Anything, "Нормальный товар", int64(224)).
		Return(&entity.Product{ID: uuid.New(), CategoryID: 224}, nil)
	catalogRepo.On("UpsertProductInfo", mock.Anything, mock.AnythingOfType("*entity.ProductInfo")).
		Return(true, nil)

	stats, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader(priceList))

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Errors)
}

func TestImportCatalog_UnknownCategoryCountedAsError(t *testing.T) {
	catalogRepo, svc := newImportMocks(t)
	shopID := uuid.New()

	priceList := `
shop: Связной
categories:
  - id: 224
    name: Смартфоны
goods:
  - id: 1
    category: 999
    name: Товар без категории
    price: 100
    quantity: 1
`

	catalogRepo.On("GetOrCreateShop", mock.Anything, "Связной", mock.Anything).
		Return(&entity.Shop{ID: shopID, Name: "Связной"}, nil)
	catalogRepo.On("GetOrCreateCategory", mock.Anything, int64(224), "Смартфоны").
		Return(&entity.Category{ID: 224, Name: "Смартфоны"}, nil)
	catalogRepo.On("AttachCategoryToShop", mock.Anything, int64(224), shopID).Return(nil)

	stats, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader(priceList))

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Errors)
	catalogRepo.AssertNotCalled(t, "UpsertProductInfo", mock.Anything, mock.Anything)
}

func TestImportCatalog_UnsupportedFormats(t *testing.T) {
	_, svc := newImportMocks(t)

	for _, name := range []string{"price.csv", "price.json", "price.xml", "price"} {
		_, err := svc.ImportCatalog(context.Background(), uuid.New(), name, strings.NewReader(""))
		assert.ErrorIs(t, err, ErrUnsupportedFormat, name)
	}
}

func TestImportCatalog_MalformedYAML(t *testing.T) {
	_, svc := newImportMocks(t)

	_, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader("{not: [valid"))
	assert.ErrorIs(t, err, ErrMalformedSource)
}

func TestImportCatalog_MissingShopName(t *testing.T) {
	_, svc := newImportMocks(t)

	_, err := svc.ImportCatalog(context.Background(), uuid.New(), "price.yaml", strings.NewReader("categories: []"))
	assert.ErrorIs(t, err, ErrMalformedSource)
}

func TestSyncFromURL_ReplacesListings(t *testing.T) {
	catalogRepo := new(mocks.MockCatalogRepository)
	taskRepo := new(mocks.MockImportTaskRepository)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePriceList))
	}))
	defer server.Close()

	svc := NewImportService(catalogRepo, noopCache{}, taskRepo, server.Client())

	shopID := uuid.New()
	setupCatalogExpectations(catalogRepo, shopID)
	catalogRepo.On("UpdateShopURL", mock.Anything, shopID, server.URL).Return(nil)
	catalogRepo.On("DeleteShopListings", mock.Anything, shopID).Return(nil)
	catalogRepo.On("CreateProductInfo", mock.Anything, mock.AnythingOfType("*entity.ProductInfo")).Return(nil)

	stats, err := svc.SyncFromURL(context.Background(), uuid.New(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	// Старые позиции удалены до вставки новых
	catalogRepo.AssertCalled(t, "DeleteShopListings", mock.Anything, shopID)
	catalogRepo.AssertNotCalled(t, "UpsertProductInfo", mock.Anything, mock.Anything)
}

func TestSyncFromURL_BadStatus(t *testing.T) {
	catalogRepo := new(mocks.MockCatalogRepository)
	taskRepo := new(mocks.MockImportTaskRepository)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewImportService(catalogRepo, noopCache{}, taskRepo, server.Client())

	_, err := svc.SyncFromURL(context.Background(), uuid.New(), server.URL)
	assert.ErrorIs(t, err, ErrMalformedSource)
}
