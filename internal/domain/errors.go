package domain

import "errors"

// Recoverable business errors. Handlers match these with errors.Is and map
// them to response codes; anything else is treated as a storage failure and
// propagated unchanged.
var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("access denied")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAccountBlocked    = errors.New("account temporarily blocked")
	ErrBadCredentials    = errors.New("invalid email or password")
)
