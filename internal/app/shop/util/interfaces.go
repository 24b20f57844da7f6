package util

import (
	"context"
	"time"

	"orderservice/internal/app/shop/entity"
)

// MessagePublisher публикует события заказов в брокер
type MessagePublisher interface {
	PublishOrderEvent(ctx context.Context, event *entity.OrderEvent) error
	Close() error
}

// CategoryCache кеширует список категорий
type CategoryCache interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Mailer отправляет почтовые уведомления
type Mailer interface {
	SendConfirmToken(ctx context.Context, email, token string) error
	SendOrderConfirmation(ctx context.Context, email string, orderID string) error
	SendOrderFormed(ctx context.Context, email string, orderID string) error
}
