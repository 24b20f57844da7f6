package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/service"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("test", "error", &strings.Builder{})
}

// Стабы сервисов: встраивание интерфейса позволяет переопределить
// только нужные тесту методы
type stubAuthService struct {
	service.AuthService
	registerErr error
	loginToken  string
	loginErr    error
}

func (s *stubAuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &entity.User{ID: uuid.New(), Email: req.Email}, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return s.loginToken, s.loginErr
}

type stubOrderService struct {
	service.OrderService
	addCreated int
	addErr     error
}

func (s *stubOrderService) AddBasketItems(ctx context.Context, userID uuid.UUID, itemsJSON string) (int, error) {
	return s.addCreated, s.addErr
}

func newTestRouter(auth *stubAuthService, orders *stubOrderService) (*gin.Engine, *util.JWTManager) {
	jwt := util.NewJWTManager("test-secret", time.Hour)

	h := &Handlers{
		User:    NewUserHandler(auth),
		Catalog: NewCatalogHandler(nil),
		Basket:  NewBasketHandler(orders),
		Order:   NewOrderHandler(orders),
		Partner: NewPartnerHandler(nil, orders, nil, nil, ""),
	}

	return SetupRouter(h, jwt), jwt
}

func bearerToken(t *testing.T, jwt *util.JWTManager, userType string) string {
	t.Helper()

	token, err := jwt.Generate(uuid.New(), "user@example.com", userType)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRegister_Success(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{}, &stubOrderService{})

	body := `{"email":"user@example.com","password":"password123","first_name":"Иван",
		"last_name":"Петров","company":"ООО Ромашка","position":"менеджер"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
}

func TestRegister_ValidationError(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{}, &stubOrderService{})

	// Пароль короче 8 символов
	body := `{"email":"user@example.com","password":"short","first_name":"Иван",
		"last_name":"Петров","company":"ООО Ромашка","position":"менеджер"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp entity.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Status)
	assert.NotNil(t, resp.Errors)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{registerErr: service.ErrEmailTaken}, &stubOrderService{})

	body := `{"email":"user@example.com","password":"password123","first_name":"Иван",
		"last_name":"Петров","company":"ООО Ромашка","position":"менеджер"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{loginErr: service.ErrInvalidCredentials}, &stubOrderService{})

	body := `{"email":"user@example.com","password":"wrongpass"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBasket_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{}, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/basket", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBasket_AddItems(t *testing.T) {
	router, jwt := newTestRouter(&stubAuthService{}, &stubOrderService{addCreated: 2})

	body := `{"items":"[{\"product_info\":\"00000000-0000-0000-0000-000000000001\",\"quantity\":1}]"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/basket", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwt, entity.UserTypeBuyer))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"created":2`)
}

func TestBasket_AddItemsBadFormat(t *testing.T) {
	router, jwt := newTestRouter(&stubAuthService{}, &stubOrderService{addErr: service.ErrItemsFormat})

	body := `{"items":"not json"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/basket", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, jwt, entity.UserTypeBuyer))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPartnerRoutes_ForbiddenForBuyers(t *testing.T) {
	router, jwt := newTestRouter(&stubAuthService{}, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/partner/orders", nil)
	req.Header.Set("Authorization", bearerToken(t, jwt, entity.UserTypeBuyer))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvalidBearerToken(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{}, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/basket", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(&stubAuthService{}, &stubOrderService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
