package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/repository/mocks"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	events []*entity.OrderEvent
	err    error
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, event *entity.OrderEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMailer struct {
	tokenMails  []string
	formedMails []string
	statusMails []string
	err         error
}

func (m *fakeMailer) SendConfirmToken(ctx context.Context, email, token string) error {
	if m.err != nil {
		return m.err
	}
	m.tokenMails = append(m.tokenMails, email)
	return nil
}

func (m *fakeMailer) SendOrderConfirmation(ctx context.Context, email, orderID string) error {
	if m.err != nil {
		return m.err
	}
	m.statusMails = append(m.statusMails, email)
	return nil
}

func (m *fakeMailer) SendOrderFormed(ctx context.Context, email, orderID string) error {
	if m.err != nil {
		return m.err
	}
	m.formedMails = append(m.formedMails, email)
	return nil
}

type orderServiceMocks struct {
	orders    *mocks.MockOrderRepository
	contacts  *mocks.MockContactRepository
	users     *mocks.MockUserRepository
	publisher *fakePublisher
	mailer    *fakeMailer
}

func newOrderService(t *testing.T) (OrderService, *orderServiceMocks) {
	t.Helper()

	m := &orderServiceMocks{
		orders:    new(mocks.MockOrderRepository),
		contacts:  new(mocks.MockContactRepository),
		users:     new(mocks.MockUserRepository),
		publisher: &fakePublisher{},
		mailer:    &fakeMailer{},
	}

	svc := NewOrderService(m.orders, m.contacts, m.users, m.publisher, m.mailer)
	return svc, m
}

func basketWithItems(userID uuid.UUID, prices ...float64) *entity.Order {
	order := &entity.Order{
		ID:     uuid.New(),
		UserID: userID,
		State:  entity.OrderStateBasket,
	}
	for i, price := range prices {
		order.Items = append(order.Items, entity.OrderItem{
			ID:       uuid.New(),
			OrderID:  order.ID,
			Quantity: i + 1,
			ProductInfo: &entity.ProductInfo{
				ID:    uuid.New(),
				Price: decimal.NewFromFloat(price),
			},
		})
	}
	return order
}

func TestAddBasketItems_InvalidJSON(t *testing.T) {
	svc, _ := newOrderService(t)

	_, err := svc.AddBasketItems(context.Background(), uuid.New(), "not json")
	assert.ErrorIs(t, err, ErrItemsFormat)

	_, err = svc.AddBasketItems(context.Background(), uuid.New(), "[]")
	assert.ErrorIs(t, err, ErrItemsFormat)
}

func TestAddBasketItems_CreatesRows(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	basket := &entity.Order{ID: uuid.New(), UserID: userID, State: entity.OrderStateBasket}

	m.orders.On("GetOrCreateBasket", mock.Anything, userID).Return(basket, nil)
	m.orders.On("CreateItem", mock.Anything, mock.AnythingOfType("*entity.OrderItem")).Return(nil)

	items := fmt.Sprintf(`[{"product_info":"%s","quantity":2},{"product_info":"%s","quantity":1}]`,
		uuid.New(), uuid.New())

	created, err := svc.AddBasketItems(context.Background(), userID, items)

	require.NoError(t, err)
	assert.Equal(t, 2, created)
	m.orders.AssertNumberOfCalls(t, "CreateItem", 2)
}

func TestAddBasketItems_DuplicateAborts(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	basket := &entity.Order{ID: uuid.New(), UserID: userID, State: entity.OrderStateBasket}

	m.orders.On("GetOrCreateBasket", mock.Anything, userID).Return(basket, nil)
	m.orders.On("CreateItem", mock.Anything, mock.AnythingOfType("*entity.OrderItem")).
		Return(repository.ErrDuplicateKey)

	items := fmt.Sprintf(`[{"product_info":"%s","quantity":2}]`, uuid.New())

	_, err := svc.AddBasketItems(context.Background(), userID, items)
	assert.ErrorIs(t, err, ErrDuplicateBasketItem)
}

func TestUpdateBasketItems_SkipsInvalidEntries(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	basket := &entity.Order{ID: uuid.New(), UserID: userID, State: entity.OrderStateBasket}
	validID := uuid.New()

	m.orders.On("GetOrCreateBasket", mock.Anything, userID).Return(basket, nil)
	m.orders.On("UpdateItemQuantity", mock.Anything, basket.ID, validID, 3).Return(int64(1), nil)

	// Нулевое количество и пустой id пропускаются, валидная запись обновляется
	items := fmt.Sprintf(`[{"id":"%s","quantity":0},{"quantity":2},{"id":"%s","quantity":3}]`,
		uuid.New(), validID)

	updated, err := svc.UpdateBasketItems(context.Background(), userID, items)

	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
	m.orders.AssertNumberOfCalls(t, "UpdateItemQuantity", 1)
}

func TestDeleteBasketItems_ScopedToBasket(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	basket := &entity.Order{ID: uuid.New(), UserID: userID, State: entity.OrderStateBasket}
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	m.orders.On("GetOrCreateBasket", mock.Anything, userID).Return(basket, nil)
	// Чужой id не удаляется: затронуто 2 строки из 3
	m.orders.On("DeleteItems", mock.Anything, basket.ID, ids).Return(int64(2), nil)

	deleted, err := svc.DeleteBasketItems(context.Background(), userID, ids)

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestConfirmOrder_PublishesEventAndSendsEmail(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	contactID := uuid.New()
	basket := basketWithItems(userID, 100, 50) // 1*100 + 2*50 = 200

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: userID}, nil)
	m.orders.On("GetByIDForUser", mock.Anything, basket.ID, userID).Return(basket, nil)
	m.orders.On("Confirm", mock.Anything, basket.ID, userID, contactID).Return(true, nil)
	m.users.On("GetByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Email: "buyer@example.com"}, nil)

	err := svc.ConfirmOrder(context.Background(), userID, basket.ID, contactID)

	require.NoError(t, err)
	require.Len(t, m.publisher.events, 1)
	assert.Equal(t, "ORDER_CONFIRMED", m.publisher.events[0].EventType)
	assert.Equal(t, "200", m.publisher.events[0].TotalSum.String())
	assert.Equal(t, []string{"buyer@example.com"}, m.mailer.formedMails)
}

func TestConfirmOrder_DoubleConfirmFails(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	contactID := uuid.New()
	basket := basketWithItems(userID, 100)

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: userID}, nil)
	m.orders.On("GetByIDForUser", mock.Anything, basket.ID, userID).Return(basket, nil)
	// Атомарный UPDATE не затронул строк: корзина уже подтверждена
	m.orders.On("Confirm", mock.Anything, basket.ID, userID, contactID).Return(false, nil)

	err := svc.ConfirmOrder(context.Background(), userID, basket.ID, contactID)

	assert.ErrorIs(t, err, ErrNotConfirmable)
	assert.Empty(t, m.publisher.events)
}

func TestConfirmOrder_ForeignContactRejected(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	contactID := uuid.New()

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: uuid.New()}, nil)

	err := svc.ConfirmOrder(context.Background(), userID, uuid.New(), contactID)

	assert.ErrorIs(t, err, repository.ErrContactNotFound)
	m.orders.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmOrder_EmptyBasketRejected(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	contactID := uuid.New()
	basket := &entity.Order{ID: uuid.New(), UserID: userID, State: entity.OrderStateBasket}

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: userID}, nil)
	m.orders.On("GetByIDForUser", mock.Anything, basket.ID, userID).Return(basket, nil)

	err := svc.ConfirmOrder(context.Background(), userID, basket.ID, contactID)
	assert.ErrorIs(t, err, ErrBasketEmpty)
}

func TestConfirmOrder_MailFailureDoesNotRollback(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()
	contactID := uuid.New()
	basket := basketWithItems(userID, 100)
	m.mailer.err = errors.New("smtp down")

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: userID}, nil)
	m.orders.On("GetByIDForUser", mock.Anything, basket.ID, userID).Return(basket, nil)
	m.orders.On("Confirm", mock.Anything, basket.ID, userID, contactID).Return(true, nil)
	m.users.On("GetByID", mock.Anything, userID).
		Return(&entity.User{ID: userID, Email: "buyer@example.com"}, nil)

	err := svc.ConfirmOrder(context.Background(), userID, basket.ID, contactID)
	assert.NoError(t, err)
}

func TestUpdateOrderState_ValidTransition(t *testing.T) {
	svc, m := newOrderService(t)
	partnerID := uuid.New()
	buyerID := uuid.New()
	orderID := uuid.New()

	m.orders.On("GetByIDForPartner", mock.Anything, orderID, partnerID).
		Return(&entity.Order{ID: orderID, UserID: buyerID, State: entity.OrderStateNew}, nil)
	m.orders.On("UpdateState", mock.Anything, orderID, entity.OrderStateConfirmed).Return(nil)
	m.users.On("GetByID", mock.Anything, buyerID).
		Return(&entity.User{ID: buyerID, Email: "buyer@example.com"}, nil)

	err := svc.UpdateOrderState(context.Background(), partnerID, orderID, entity.OrderStateConfirmed)

	require.NoError(t, err)
	assert.Equal(t, []string{"buyer@example.com"}, m.mailer.statusMails)
}

func TestUpdateOrderState_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from entity.OrderState
		to   entity.OrderState
	}{
		{"skip states", entity.OrderStateNew, entity.OrderStateDelivered},
		{"backwards", entity.OrderStateSent, entity.OrderStateConfirmed},
		{"terminal delivered", entity.OrderStateDelivered, entity.OrderStateCanceled},
		{"terminal canceled", entity.OrderStateCanceled, entity.OrderStateNew},
		{"into basket", entity.OrderStateNew, entity.OrderStateBasket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newOrderService(t)
			partnerID := uuid.New()
			orderID := uuid.New()

			m.orders.On("GetByIDForPartner", mock.Anything, orderID, partnerID).
				Return(&entity.Order{ID: orderID, UserID: uuid.New(), State: tt.from}, nil)

			err := svc.UpdateOrderState(context.Background(), partnerID, orderID, tt.to)

			assert.ErrorIs(t, err, ErrInvalidTransition)
			m.orders.AssertNotCalled(t, "UpdateState", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateOrderState_CancelFromAnyActive(t *testing.T) {
	for _, from := range []entity.OrderState{
		entity.OrderStateNew,
		entity.OrderStateConfirmed,
		entity.OrderStateAssembled,
		entity.OrderStateSent,
	} {
		t.Run(string(from), func(t *testing.T) {
			svc, m := newOrderService(t)
			partnerID := uuid.New()
			buyerID := uuid.New()
			orderID := uuid.New()

			m.orders.On("GetByIDForPartner", mock.Anything, orderID, partnerID).
				Return(&entity.Order{ID: orderID, UserID: buyerID, State: from}, nil)
			m.orders.On("UpdateState", mock.Anything, orderID, entity.OrderStateCanceled).Return(nil)
			m.users.On("GetByID", mock.Anything, buyerID).
				Return(&entity.User{ID: buyerID, Email: "buyer@example.com"}, nil)

			err := svc.UpdateOrderState(context.Background(), partnerID, orderID, entity.OrderStateCanceled)
			assert.NoError(t, err)
		})
	}
}

func TestGetOrders_ComputesTotals(t *testing.T) {
	svc, m := newOrderService(t)
	userID := uuid.New()

	order := basketWithItems(userID, 10.50, 20) // 1*10.50 + 2*20 = 50.50
	order.State = entity.OrderStateNew

	m.orders.On("GetUserOrders", mock.Anything, userID).Return([]entity.Order{*order}, nil)

	orders, err := svc.GetOrders(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "50.5", orders[0].TotalSum.String())
}

func TestTotalSum_SkipsItemsWithoutProductInfo(t *testing.T) {
	order := basketWithItems(uuid.New(), 100)
	order.Items = append(order.Items, entity.OrderItem{ID: uuid.New(), Quantity: 5})

	assert.Equal(t, "100", order.TotalSum().String())
}
