package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Company   string `json:"company" validate:"required"`
	Position  string `json:"position" validate:"required"`
	Type      string `json:"type" validate:"omitempty,oneof=buyer shop"`
}

// ConfirmEmailRequest - запрос на подтверждение почты
type ConfirmEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Token string `json:"token" validate:"required"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest - частичное обновление профиля
type UpdateAccountRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`
	Password  string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// CreateContactRequest - запрос на создание контакта
type CreateContactRequest struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" validate:"required"`
}

// UpdateContactRequest - частичное обновление контакта
type UpdateContactRequest struct {
	ID        uuid.UUID `json:"id" validate:"required"`
	City      string    `json:"city,omitempty"`
	Street    string    `json:"street,omitempty"`
	House     string    `json:"house,omitempty"`
	Structure string    `json:"structure,omitempty"`
	Building  string    `json:"building,omitempty"`
	Apartment string    `json:"apartment,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

// BasketItemsRequest - тело POST/PUT/DELETE /basket
// Поле items передаётся строкой с JSON внутри, контракт исходного API
type BasketItemsRequest struct {
	Items string `json:"items" validate:"required"`
}

// BasketItemPayload - одна позиция при добавлении в корзину
type BasketItemPayload struct {
	ProductInfo uuid.UUID `json:"product_info" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gt=0"`
}

// BasketUpdatePayload - обновление количества у позиции корзины
type BasketUpdatePayload struct {
	ID       uuid.UUID `json:"id"`
	Quantity int       `json:"quantity"`
}

// ConfirmOrderRequest - подтверждение заказа: перевод basket -> new
type ConfirmOrderRequest struct {
	ID      uuid.UUID `json:"id" validate:"required"`
	Contact uuid.UUID `json:"contact" validate:"required"`
}

// PartnerUpdateRequest - запрос синхронизации прайс-листа по URL
type PartnerUpdateRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// PartnerStateRequest - переключение активности магазина
type PartnerStateRequest struct {
	State *bool `json:"state" validate:"required"`
}

// StatusResponse - единый конверт ответа исходного API
type StatusResponse struct {
	Status bool        `json:"Status"`
	Errors interface{} `json:"Errors,omitempty"`
}

// LoginResponse - ответ на успешный вход
type LoginResponse struct {
	Status bool   `json:"Status"`
	Token  string `json:"Token"`
}

// ImportTaskResponse - ответ на постановку задачи импорта
type ImportTaskResponse struct {
	Status bool   `json:"Status"`
	TaskID string `json:"task_id"`
}

// OrderResponse - заказ с вычисленной суммой
type OrderResponse struct {
	Order
	TotalSum decimal.Decimal `json:"total_sum"`
}

// PriceListFile - структура прайс-листа партнёра (YAML)
type PriceListFile struct {
	Shop       string              `yaml:"shop" json:"shop"`
	Categories []PriceListCategory `yaml:"categories" json:"categories"`
	Goods      []PriceListGood     `yaml:"goods" json:"goods"`
}

// PriceListCategory - категория из прайс-листа, id задаёт партнёр
type PriceListCategory struct {
	ID   int64  `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// PriceListGood - позиция прайс-листа
// price_rrc по умолчанию равен price, discount по умолчанию 0
// Цены читаются как float64 и конвертируются в decimal на стороне импортёра
type PriceListGood struct {
	ID         int64             `yaml:"id" json:"id"`
	Category   int64             `yaml:"category" json:"category"`
	Name       string            `yaml:"name" json:"name"`
	Model      string            `yaml:"model" json:"model"`
	Price      float64           `yaml:"price" json:"price"`
	PriceRRC   *float64          `yaml:"price_rrc" json:"price_rrc"`
	Quantity   int               `yaml:"quantity" json:"quantity"`
	Discount   int               `yaml:"discount" json:"discount"`
	Parameters map[string]string `yaml:"parameters" json:"parameters"`
}
