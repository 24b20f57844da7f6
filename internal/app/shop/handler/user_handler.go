package handler

import (
	"errors"
	"net/http"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/repository"
	"orderservice/internal/app/shop/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// UserHandler обрабатывает регистрацию, вход, профиль и контакты
type UserHandler struct {
	auth     service.AuthService
	validate *validator.Validate
}

// NewUserHandler создает handler пользователей
func NewUserHandler(auth service.AuthService) *UserHandler {
	return &UserHandler{
		auth:     auth,
		validate: validator.New(),
	}
}

// Register обрабатывает POST /user/register
func (h *UserHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusBadRequest, "email already registered")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	respondOK(c, http.StatusCreated)
}

// ConfirmEmail обрабатывает POST /user/register/confirm
func (h *UserHandler) ConfirmEmail(c *gin.Context) {
	var req entity.ConfirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.auth.ConfirmEmail(c.Request.Context(), req.Email, req.Token); err != nil {
		if errors.Is(err, service.ErrInvalidConfirmToken) {
			respondError(c, http.StatusBadRequest, "invalid token or email")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	respondOK(c, http.StatusOK)
}

// Login обрабатывает POST /user/login
func (h *UserHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, service.ErrAccountNotActive):
			respondError(c, http.StatusForbidden, "confirm your email first")
		default:
			respondError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}

	c.JSON(http.StatusOK, entity.LoginResponse{Status: true, Token: token})
}

// GetDetails обрабатывает GET /user/details
func (h *UserHandler) GetDetails(c *gin.Context) {
	user, err := h.auth.GetAccount(c.Request.Context(), userID(c))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateDetails обрабатывает POST /user/details, частичное обновление профиля
func (h *UserHandler) UpdateDetails(c *gin.Context) {
	var req entity.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.UpdateAccount(c.Request.Context(), userID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "user not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetContacts обрабатывает GET /user/contact
func (h *UserHandler) GetContacts(c *gin.Context) {
	contacts, err := h.auth.GetContacts(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// CreateContact обрабатывает POST /user/contact
func (h *UserHandler) CreateContact(c *gin.Context) {
	var req entity.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.auth.CreateContact(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// UpdateContact обрабатывает PUT /user/contact
func (h *UserHandler) UpdateContact(c *gin.Context) {
	var req entity.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.auth.UpdateContact(c.Request.Context(), userID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			respondError(c, http.StatusNotFound, "contact not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, contact)
}

// DeleteContacts обрабатывает DELETE /user/contact
// Тело содержит items - строку id через запятую
func (h *UserHandler) DeleteContacts(c *gin.Context) {
	var req entity.BasketItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	ids, err := parseIDList(req.Items)
	if err != nil || len(ids) == 0 {
		respondError(c, http.StatusBadRequest, "invalid items list")
		return
	}

	deleted, err := h.auth.DeleteContacts(c.Request.Context(), userID(c), ids)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"Status": true, "deleted": deleted})
}
