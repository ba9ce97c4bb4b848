package domain

import "errors"

var (
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidAmount     = errors.New("invalid total amount")
	ErrInvalidID         = errors.New("invalid id")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
)
