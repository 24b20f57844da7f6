package service

import "errors"

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountNotActive    = errors.New("account is not active")
	ErrInvalidConfirmToken = errors.New("invalid confirm token")

	ErrItemsFormat         = errors.New("invalid items format")
	ErrDuplicateBasketItem = errors.New("item already in basket")
	ErrBasketEmpty         = errors.New("basket is empty")
	ErrNotConfirmable      = errors.New("order cannot be confirmed")
	ErrInvalidTransition   = errors.New("invalid order state transition")

	ErrUnsupportedFormat = errors.New("unsupported price list format")
	ErrMalformedSource   = errors.New("malformed price list source")
)
