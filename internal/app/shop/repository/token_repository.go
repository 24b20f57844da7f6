package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/app/shop/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type tokenRepository struct {
	db *pgxpool.Pool
}

// NewTokenRepository создает новый репозиторий токенов подтверждения почты
func NewTokenRepository(db *pgxpool.Pool) TokenRepository {
	return &tokenRepository{db: db}
}

// Create сохраняет токен подтверждения
func (r *tokenRepository) Create(ctx context.Context, token *entity.ConfirmEmailToken) error {
	query := `
		INSERT INTO confirm_email_tokens (id, user_id, key, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query, token.ID, token.UserID, token.Key, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create confirm token: %w", err)
	}

	return nil
}

// GetByEmailAndKey ищет токен по email пользователя и ключу
// Используется при подтверждении регистрации
func (r *tokenRepository) GetByEmailAndKey(ctx context.Context, email, key string) (*entity.ConfirmEmailToken, error) {
	query := `
		SELECT t.id, t.user_id, t.key, t.created_at
		FROM confirm_email_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE u.email = $1 AND t.key = $2
	`

	var token entity.ConfirmEmailToken
	err := r.db.QueryRow(ctx, query, email, key).Scan(
		&token.ID, &token.UserID, &token.Key, &token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get confirm token: %w", err)
	}

	return &token, nil
}

// Delete удаляет токен, токен одноразовый
func (r *tokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM confirm_email_tokens WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete confirm token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteExpired удаляет токены старше указанного момента
// Вызывается cron задачей
func (r *tokenRepository) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `DELETE FROM confirm_email_tokens WHERE created_at < $1`

	result, err := r.db.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return result.RowsAffected(), nil
}
