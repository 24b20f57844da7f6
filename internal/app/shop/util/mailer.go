package util

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"orderservice/pkg/metrics"
)

// SMTPMailer отправляет письма через SMTP
type SMTPMailer struct {
	host     string
	port     string
	user     string
	password string
	from     string
}

// NewSMTPMailer создает SMTP mailer
func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	addr := m.host + ":" + m.port

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", m.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	return nil
}

// SendConfirmToken отправляет токен подтверждения регистрации
func (m *SMTPMailer) SendConfirmToken(ctx context.Context, email, token string) error {
	subject := fmt.Sprintf("Password Reset Token for %s", email)
	body := token

	if err := m.send(email, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues("confirm_token", "error").Inc()
		return err
	}

	metrics.EmailsSent.WithLabelValues("confirm_token", "ok").Inc()
	return nil
}

// SendOrderConfirmation отправляет письмо о подтверждении заказа
func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, email string, orderID string) error {
	subject := "Обновление статуса заказа"
	body := fmt.Sprintf("Заказ %s подтверждён и принят в обработку", orderID)

	if err := m.send(email, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues("order_confirmation", "error").Inc()
		return err
	}

	metrics.EmailsSent.WithLabelValues("order_confirmation", "ok").Inc()
	return nil
}

// SendOrderFormed отправляет письмо о сформированном заказе
func (m *SMTPMailer) SendOrderFormed(ctx context.Context, email string, orderID string) error {
	subject := "Обновление статуса заказа"
	body := "Заказ сформирован"

	if err := m.send(email, subject, body); err != nil {
		metrics.EmailsSent.WithLabelValues("order_formed", "error").Inc()
		return err
	}

	metrics.EmailsSent.WithLabelValues("order_formed", "ok").Inc()
	return nil
}
