package service

import (
	"context"
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

type authService struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	contacts repository.ContactRepository
	jwt      *util.JWTManager
	mailer   util.Mailer
	tokenTTL time.Duration
}

// NewAuthService создает сервис аутентификации и профиля
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	contacts repository.ContactRepository,
	jwt *util.JWTManager,
	mailer util.Mailer,
	tokenTTL time.Duration,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		contacts: contacts,
		jwt:      jwt,
		mailer:   mailer,
		tokenTTL: tokenTTL,
	}
}

// Register создает неактивного пользователя и отправляет токен подтверждения
func (s *authService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userType := req.Type
	if userType == "" {
		userType = entity.UserTypeBuyer
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Company:      req.Company,
		Position:     req.Position,
		Type:         userType,
		IsActive:     false,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token := &entity.ConfirmEmailToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		Key:       uuid.NewString(),
		CreatedAt: time.Now(),
	}

	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to create confirm token: %w", err)
	}

	// Логируем ошибку отправки, но не прерываем регистрацию:
	// пользователь уже создан, токен можно переотправить
	if err := s.mailer.SendConfirmToken(ctx, user.Email, token.Key); err != nil {
		logger.Error().Err(err).Str("email", user.Email).Msg("failed to send confirm token")
	}

	metrics.UsersRegistered.Inc()

	logger.Info().Str("user_id", user.ID.String()).Str("type", user.Type).Msg("user registered")

	return user, nil
}

// ConfirmEmail активирует пользователя по одноразовому токену
func (s *authService) ConfirmEmail(ctx context.Context, email, key string) error {
	token, err := s.tokens.GetByEmailAndKey(ctx, email, key)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrInvalidConfirmToken
		}
		return fmt.Errorf("failed to get confirm token: %w", err)
	}

	if err := s.users.Activate(ctx, token.UserID); err != nil {
		return fmt.Errorf("failed to activate user: %w", err)
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		logger.Error().Err(err).Str("token_id", token.ID.String()).Msg("failed to delete used confirm token")
	}

	logger.Info().Str("user_id", token.UserID.String()).Msg("email confirmed")

	return nil
}

// Login проверяет пароль и выдаёт access токен
// Неактивный аккаунт не может войти до подтверждения почты
func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", ErrAccountNotActive
	}

	token, err := s.jwt.Generate(user.ID, user.Email, user.Type)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// GetAccount возвращает профиль пользователя
func (s *authService) GetAccount(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateAccount частично обновляет профиль, пустые поля не трогаются
func (s *authService) UpdateAccount(ctx context.Context, userID uuid.UUID, req *entity.UpdateAccountRequest) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Company != "" {
		user.Company = req.Company
	}
	if req.Position != "" {
		user.Position = req.Position
	}
	if req.Password != "" {
		hash, err := util.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// CreateContact добавляет адрес доставки пользователя
func (s *authService) CreateContact(ctx context.Context, userID uuid.UUID, req *entity.CreateContactRequest) (*entity.Contact, error) {
	contact := &entity.Contact{
		ID:        uuid.New(),
		UserID:    userID,
		City:      req.City,
		Street:    req.Street,
		House:     req.House,
		Structure: req.Structure,
		Building:  req.Building,
		Apartment: req.Apartment,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	return contact, nil
}

// GetContacts возвращает все адреса доставки пользователя
func (s *authService) GetContacts(ctx context.Context, userID uuid.UUID) ([]entity.Contact, error) {
	return s.contacts.GetByUser(ctx, userID)
}

// UpdateContact частично обновляет адрес, доступ ограничен владельцем
func (s *authService) UpdateContact(ctx context.Context, userID uuid.UUID, req *entity.UpdateContactRequest) (*entity.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if contact.UserID != userID {
		return nil, repository.ErrContactNotFound
	}

	if req.City != "" {
		contact.City = req.City
	}
	if req.Street != "" {
		contact.Street = req.Street
	}
	if req.House != "" {
		contact.House = req.House
	}
	if req.Structure != "" {
		contact.Structure = req.Structure
	}
	if req.Building != "" {
		contact.Building = req.Building
	}
	if req.Apartment != "" {
		contact.Apartment = req.Apartment
	}
	if req.Phone != "" {
		contact.Phone = req.Phone
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}

	return contact, nil
}

// DeleteContacts удаляет адреса по списку id, чужие id игнорируются
func (s *authService) DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	return s.contacts.DeleteByIDs(ctx, userID, ids)
}

// CleanupExpiredTokens удаляет просроченные токены подтверждения
// Вызывается по расписанию cron
func (s *authService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := s.tokens.DeleteExpired(ctx, time.Now().Add(-s.tokenTTL))
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired tokens: %w", err)
	}

	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("expired confirm tokens removed")
	}

	return deleted, nil
}
