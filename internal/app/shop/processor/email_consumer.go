package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/util"
	"orderservice/pkg/logger"
	"orderservice/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// EmailConsumer читает события заказов из Kafka и отправляет письма
// Письмо о подтверждении отправляется асинхронно, не задерживая HTTP ответ
type EmailConsumer struct {
	reader  *kafka.Reader
	mailer  util.Mailer
	topic   string
	groupID string
}

// NewEmailConsumer создает consumer событий заказов
func NewEmailConsumer(brokers []string, topic, groupID string, mailer util.Mailer) *EmailConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})

	return &EmailConsumer{
		reader:  reader,
		mailer:  mailer,
		topic:   topic,
		groupID: groupID,
	}
}

// Run читает и обрабатывает события до отмены контекста
func (c *EmailConsumer) Run(ctx context.Context) {
	logger.Info().Str("topic", c.topic).Msg("email consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("email consumer stopped")
				return
			}
			metrics.KafkaErrors.WithLabelValues(c.topic, "fetch").Inc()
			logger.Error().Err(err).Msg("failed to fetch message")
			continue
		}

		if err := c.handle(ctx, msg); err != nil {
			// Оффсет не коммитим: письмо уйдёт при повторной доставке
			logger.Error().Err(err).Msg("failed to process order event")
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			metrics.KafkaErrors.WithLabelValues(c.topic, "commit").Inc()
			logger.Error().Err(err).Msg("failed to commit message")
		}
	}
}

// Close закрывает reader
func (c *EmailConsumer) Close() error {
	return c.reader.Close()
}

// handle обрабатывает одно событие; ненулевая ошибка означает, что
// сообщение нужно доставить повторно
func (c *EmailConsumer) handle(ctx context.Context, msg kafka.Message) error {
	metrics.KafkaMessagesConsumed.WithLabelValues(c.topic, c.groupID).Inc()

	var event entity.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Битое сообщение коммитим, повтор не поможет
		logger.Error().Err(err).Msg("failed to unmarshal order event")
		return nil
	}

	if event.EventType != "ORDER_CONFIRMED" {
		logger.Warn().Str("event_type", event.EventType).Msg("unknown order event type")
		return nil
	}

	if err := c.mailer.SendOrderConfirmation(ctx, event.Email, event.OrderID.String()); err != nil {
		return fmt.Errorf("failed to send order confirmation email for %s: %w", event.OrderID, err)
	}

	logger.Info().Str("order_id", event.OrderID.String()).Msg("order confirmation email sent")
	return nil
}
