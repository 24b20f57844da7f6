package util

import (
	"context"
	"encoding/json"
	"fmt"

	"orderservice/internal/app/shop/entity"
	"orderservice/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher публикует события заказов в Kafka
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisher создает producer событий заказов
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
	}
}

// PublishOrderEvent отправляет событие заказа
// Ключом служит order_id, события одного заказа попадают в одну партицию
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event *entity.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.KafkaErrors.WithLabelValues(p.topic, "marshal").Inc()
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: payload,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.KafkaErrors.WithLabelValues(p.topic, "produce").Inc()
		return fmt.Errorf("failed to write order event: %w", err)
	}

	metrics.KafkaMessagesProduced.WithLabelValues(p.topic).Inc()
	return nil
}

// Close закрывает producer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
