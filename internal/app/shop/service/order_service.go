package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"
	"orderservice/pkg/metrics"

	"github.com/google/uuid"
)

// allowedTransitions задаёт граф состояний заказа
// Корзина выходит только в new через подтверждение, отмена доступна
// из любого нетерминального оформленного состояния
var allowedTransitions = map[entity.OrderState][]entity.OrderState{
	entity.OrderStateNew:       {entity.OrderStateConfirmed, entity.OrderStateCanceled},
	entity.OrderStateConfirmed: {entity.OrderStateAssembled, entity.OrderStateCanceled},
	entity.OrderStateAssembled: {entity.OrderStateSent, entity.OrderStateCanceled},
	entity.OrderStateSent:      {entity.OrderStateDelivered, entity.OrderStateCanceled},
}

type orderService struct {
	orders    repository.OrderRepository
	contacts  repository.ContactRepository
	users     repository.UserRepository
	publisher util.MessagePublisher
	mailer    util.Mailer
}

// NewOrderService создает сервис корзины и заказов
func NewOrderService(
	orders repository.OrderRepository,
	contacts repository.ContactRepository,
	users repository.UserRepository,
	publisher util.MessagePublisher,
	mailer util.Mailer,
) OrderService {
	return &orderService{
		orders:    orders,
		contacts:  contacts,
		users:     users,
		publisher: publisher,
		mailer:    mailer,
	}
}

// GetBasket возвращает корзину пользователя с позициями и суммой
// Отсутствующая корзина создается пустой
func (s *orderService) GetBasket(ctx context.Context, userID uuid.UUID) (*entity.OrderResponse, error) {
	if _, err := s.orders.GetOrCreateBasket(ctx, userID); err != nil {
		return nil, err
	}

	basket, err := s.orders.GetBasketWithItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &entity.OrderResponse{
		Order:    *basket,
		TotalSum: basket.TotalSum(),
	}, nil
}

// AddBasketItems добавляет позиции из JSON-строки items
// Повторное добавление существующей позиции прерывает запрос ошибкой
func (s *orderService) AddBasketItems(ctx context.Context, userID uuid.UUID, itemsJSON string) (int, error) {
	var payload []entity.BasketItemPayload
	if err := json.Unmarshal([]byte(itemsJSON), &payload); err != nil {
		return 0, ErrItemsFormat
	}
	if len(payload) == 0 {
		return 0, ErrItemsFormat
	}

	basket, err := s.orders.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, p := range payload {
		if p.ProductInfo == uuid.Nil || p.Quantity <= 0 {
			return created, ErrItemsFormat
		}

		item := &entity.OrderItem{
			OrderID:       basket.ID,
			ProductInfoID: p.ProductInfo,
			Quantity:      p.Quantity,
			CreatedAt:     time.Now(),
		}

		if err := s.orders.CreateItem(ctx, item); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return created, ErrDuplicateBasketItem
			}
			return created, err
		}
		created++
	}

	return created, nil
}

// UpdateBasketItems меняет количество у позиций из JSON-строки items
// Некорректные записи (пустой id, количество <= 0) молча пропускаются,
// возвращается число реально обновлённых позиций
func (s *orderService) UpdateBasketItems(ctx context.Context, userID uuid.UUID, itemsJSON string) (int64, error) {
	var payload []entity.BasketUpdatePayload
	if err := json.Unmarshal([]byte(itemsJSON), &payload); err != nil {
		return 0, ErrItemsFormat
	}
	if len(payload) == 0 {
		return 0, ErrItemsFormat
	}

	basket, err := s.orders.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return 0, err
	}

	var updated int64
	for _, p := range payload {
		if p.ID == uuid.Nil || p.Quantity <= 0 {
			continue
		}

		n, err := s.orders.UpdateItemQuantity(ctx, basket.ID, p.ID, p.Quantity)
		if err != nil {
			return updated, err
		}
		updated += n
	}

	return updated, nil
}

// DeleteBasketItems удаляет позиции корзины по списку id
// Чужие и несуществующие id молча игнорируются
func (s *orderService) DeleteBasketItems(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	basket, err := s.orders.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return 0, err
	}

	return s.orders.DeleteItems(ctx, basket.ID, ids)
}

// ConfirmOrder переводит корзину в состояние new с привязкой контакта
// Переход атомарный: повторное подтверждение той же корзины невозможно
// После успешного перехода публикуется событие и отправляется письмо;
// их сбои логируются, но заказ уже подтверждён
func (s *orderService) ConfirmOrder(ctx context.Context, userID, orderID, contactID uuid.UUID) error {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if contact.UserID != userID {
		return repository.ErrContactNotFound
	}

	basket, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return err
	}
	if len(basket.Items) == 0 {
		return ErrBasketEmpty
	}

	ok, err := s.orders.Confirm(ctx, orderID, userID, contactID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotConfirmable
	}

	metrics.OrdersConfirmed.Inc()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load user for notifications")
		return nil
	}

	event := &entity.OrderEvent{
		EventType: "ORDER_CONFIRMED",
		OrderID:   orderID,
		UserID:    userID,
		Email:     user.Email,
		TotalSum:  basket.TotalSum(),
		Timestamp: time.Now(),
	}

	// Логируем ошибку, но не прерываем выполнение: заказ уже в состоянии new
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to publish order event")
	}

	if err := s.mailer.SendOrderFormed(ctx, user.Email, orderID.String()); err != nil {
		logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to send order formed email")
	}

	logger.Info().Str("order_id", orderID.String()).Str("user_id", userID.String()).Msg("order confirmed")

	return nil
}

// GetOrders возвращает оформленные заказы пользователя с суммами
func (s *orderService) GetOrders(ctx context.Context, userID uuid.UUID) ([]entity.OrderResponse, error) {
	orders, err := s.orders.GetUserOrders(ctx, userID)
	if err != nil {
		return nil, err
	}

	return withTotals(orders), nil
}

// GetOrder возвращает один заказ пользователя с суммой
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.OrderResponse, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	return &entity.OrderResponse{
		Order:    *order,
		TotalSum: order.TotalSum(),
	}, nil
}

// GetPartnerOrders возвращает заказы, содержащие позиции магазина партнёра
func (s *orderService) GetPartnerOrders(ctx context.Context, partnerUserID uuid.UUID) ([]entity.OrderResponse, error) {
	orders, err := s.orders.GetPartnerOrders(ctx, partnerUserID)
	if err != nil {
		return nil, err
	}

	return withTotals(orders), nil
}

// UpdateOrderState переводит заказ партнёра в новое состояние
// Переход валидируется по графу состояний, терминальные состояния неизменяемы
func (s *orderService) UpdateOrderState(ctx context.Context, partnerUserID, orderID uuid.UUID, state entity.OrderState) error {
	order, err := s.orders.GetByIDForPartner(ctx, orderID, partnerUserID)
	if err != nil {
		return err
	}

	if !transitionAllowed(order.State, state) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.State, state)
	}

	if err := s.orders.UpdateState(ctx, orderID, state); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load user for status email")
		return nil
	}

	// Покупатель узнаёт о смене статуса письмом; сбой отправки не откатывает переход
	if err := s.mailer.SendOrderConfirmation(ctx, user.Email, orderID.String()); err != nil {
		logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to send status email")
	}

	logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(order.State)).
		Str("to", string(state)).
		Msg("order state updated")

	return nil
}

// transitionAllowed проверяет допустимость перехода по графу состояний
func transitionAllowed(from, to entity.OrderState) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func withTotals(orders []entity.Order) []entity.OrderResponse {
	responses := make([]entity.OrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, entity.OrderResponse{
			Order:    orders[i],
			TotalSum: orders[i].TotalSum(),
		})
	}
	return responses
}
