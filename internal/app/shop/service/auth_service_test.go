package service

import (
	"context"
	"testing"
	"time"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/repository/mocks"
	"orderservice/internal/app/shop/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authServiceMocks struct {
	users    *mocks.MockUserRepository
	tokens   *mocks.MockTokenRepository
	contacts *mocks.MockContactRepository
	mailer   *fakeMailer
}

func newAuthService(t *testing.T) (AuthService, *authServiceMocks) {
	t.Helper()

	m := &authServiceMocks{
		users:    new(mocks.MockUserRepository),
		tokens:   new(mocks.MockTokenRepository),
		contacts: new(mocks.MockContactRepository),
		mailer:   &fakeMailer{},
	}

	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(m.users, m.tokens, m.contacts, jwtManager, m.mailer, 24*time.Hour)

	return svc, m
}

func registerRequest() *entity.RegisterRequest {
	return &entity.RegisterRequest{
		Email:     "user@example.com",
		Password:  "password123",
		FirstName: "Иван",
		LastName:  "Петров",
		Company:   "ООО Ромашка",
		Position:  "менеджер",
	}
}

func TestRegister_CreatesInactiveUserAndSendsToken(t *testing.T) {
	svc, m := newAuthService(t)

	var createdUser *entity.User
	m.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Run(func(args mock.Arguments) {
			createdUser = args.Get(1).(*entity.User)
		}).
		Return(nil)
	m.tokens.On("Create", mock.Anything, mock.AnythingOfType("*entity.ConfirmEmailToken")).Return(nil)

	user, err := svc.Register(context.Background(), registerRequest())

	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, entity.UserTypeBuyer, user.Type)
	assert.NotEqual(t, "password123", createdUser.PasswordHash)
	assert.Equal(t, []string{"user@example.com"}, m.mailer.tokenMails)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, m := newAuthService(t)

	m.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).
		Return(repository.ErrDuplicateKey)

	_, err := svc.Register(context.Background(), registerRequest())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_MailFailureDoesNotFailRegistration(t *testing.T) {
	svc, m := newAuthService(t)
	m.mailer.err = assert.AnError

	m.users.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)
	m.tokens.On("Create", mock.Anything, mock.AnythingOfType("*entity.ConfirmEmailToken")).Return(nil)

	_, err := svc.Register(context.Background(), registerRequest())
	assert.NoError(t, err)
}

func TestConfirmEmail_ActivatesAndBurnsToken(t *testing.T) {
	svc, m := newAuthService(t)
	token := &entity.ConfirmEmailToken{ID: uuid.New(), UserID: uuid.New(), Key: "key123"}

	m.tokens.On("GetByEmailAndKey", mock.Anything, "user@example.com", "key123").Return(token, nil)
	m.users.On("Activate", mock.Anything, token.UserID).Return(nil)
	m.tokens.On("Delete", mock.Anything, token.ID).Return(nil)

	err := svc.ConfirmEmail(context.Background(), "user@example.com", "key123")

	require.NoError(t, err)
	m.tokens.AssertCalled(t, "Delete", mock.Anything, token.ID)
}

func TestConfirmEmail_UnknownToken(t *testing.T) {
	svc, m := newAuthService(t)

	m.tokens.On("GetByEmailAndKey", mock.Anything, "user@example.com", "bad").
		Return(nil, repository.ErrTokenNotFound)

	err := svc.ConfirmEmail(context.Background(), "user@example.com", "bad")
	assert.ErrorIs(t, err, ErrInvalidConfirmToken)
}

func TestLogin_Success(t *testing.T) {
	svc, m := newAuthService(t)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	m.users.On("GetByEmail", mock.Anything, "user@example.com").Return(&entity.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: hash,
		Type:         entity.UserTypeBuyer,
		IsActive:     true,
	}, nil)

	token, err := svc.Login(context.Background(), "user@example.com", "password123")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, m := newAuthService(t)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	m.users.On("GetByEmail", mock.Anything, "user@example.com").Return(&entity.User{
		PasswordHash: hash,
		IsActive:     true,
	}, nil)

	_, err = svc.Login(context.Background(), "user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, m := newAuthService(t)

	m.users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, repository.ErrUserNotFound)

	_, err := svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, m := newAuthService(t)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	m.users.On("GetByEmail", mock.Anything, "user@example.com").Return(&entity.User{
		PasswordHash: hash,
		IsActive:     false,
	}, nil)

	_, err = svc.Login(context.Background(), "user@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountNotActive)
}

func TestUpdateAccount_PartialUpdate(t *testing.T) {
	svc, m := newAuthService(t)
	userID := uuid.New()

	m.users.On("GetByID", mock.Anything, userID).Return(&entity.User{
		ID:        userID,
		FirstName: "Иван",
		LastName:  "Петров",
		Company:   "ООО Ромашка",
	}, nil)
	m.users.On("Update", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	user, err := svc.UpdateAccount(context.Background(), userID, &entity.UpdateAccountRequest{
		Company: "ООО Василек",
	})

	require.NoError(t, err)
	assert.Equal(t, "ООО Василек", user.Company)
	assert.Equal(t, "Иван", user.FirstName) // не перезаписано
}

func TestUpdateContact_ForeignContactRejected(t *testing.T) {
	svc, m := newAuthService(t)
	contactID := uuid.New()

	m.contacts.On("GetByID", mock.Anything, contactID).
		Return(&entity.Contact{ID: contactID, UserID: uuid.New()}, nil)

	_, err := svc.UpdateContact(context.Background(), uuid.New(), &entity.UpdateContactRequest{
		ID:   contactID,
		City: "Москва",
	})

	assert.ErrorIs(t, err, repository.ErrContactNotFound)
	m.contacts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, m := newAuthService(t)

	m.tokens.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(3), nil)

	deleted, err := svc.CleanupExpiredTokens(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
