package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConfirmMailer записывает отправленные подтверждения
type fakeConfirmMailer struct {
	sent []string
	err  error
}

func (m *fakeConfirmMailer) SendConfirmToken(ctx context.Context, email, token string) error {
	return nil
}

func (m *fakeConfirmMailer) SendOrderConfirmation(ctx context.Context, email, orderID string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, orderID)
	return nil
}

func (m *fakeConfirmMailer) SendOrderFormed(ctx context.Context, email, orderID string) error {
	return nil
}

func confirmedMessage(t *testing.T, orderID uuid.UUID) kafka.Message {
	t.Helper()

	value, err := json.Marshal(entity.OrderEvent{
		EventType: "ORDER_CONFIRMED",
		OrderID:   orderID,
		Email:     "buyer@example.com",
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestEmailConsumer_HandleSendsConfirmation(t *testing.T) {
	mailer := &fakeConfirmMailer{}
	consumer := &EmailConsumer{mailer: mailer, topic: "orders"}
	orderID := uuid.New()

	err := consumer.handle(context.Background(), confirmedMessage(t, orderID))

	require.NoError(t, err)
	assert.Equal(t, []string{orderID.String()}, mailer.sent)
}

func TestEmailConsumer_HandleSendFailureIsRetriable(t *testing.T) {
	sendErr := errors.New("smtp connection refused")
	mailer := &fakeConfirmMailer{err: sendErr}
	consumer := &EmailConsumer{mailer: mailer, topic: "orders"}

	// Сбой отправки возвращает ошибку: оффсет не коммитится,
	// сообщение будет доставлено повторно
	err := consumer.handle(context.Background(), confirmedMessage(t, uuid.New()))

	assert.ErrorIs(t, err, sendErr)
}

func TestEmailConsumer_PoisonMessageIsNotRetried(t *testing.T) {
	mailer := &fakeConfirmMailer{err: errors.New("must not be called")}
	consumer := &EmailConsumer{mailer: mailer, topic: "orders"}

	err := consumer.handle(context.Background(), kafka.Message{Value: []byte("not json")})

	// Битое сообщение не ошибка обработки: повтор не поможет
	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestEmailConsumer_UnknownEventTypeSkipped(t *testing.T) {
	mailer := &fakeConfirmMailer{}
	consumer := &EmailConsumer{mailer: mailer, topic: "orders"}

	value, err := json.Marshal(entity.OrderEvent{EventType: "ORDER_SHIPPED", OrderID: uuid.New()})
	require.NoError(t, err)

	handleErr := consumer.handle(context.Background(), kafka.Message{Value: value})

	assert.NoError(t, handleErr)
	assert.Empty(t, mailer.sent)
}
