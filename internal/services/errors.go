// internal/services/errors.go
package services

import "errors"

// Sentinel errors returned by the billing, returns and trust services.
// Handlers classify them with errors.Is; anything else is a persistence
// failure and maps to a 500.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInUse      = errors.New("product appears on a bill")
	ErrProductInactive   = errors.New("product is not active")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrBillNotFound      = errors.New("bill not found")
	ErrReturnNotFound    = errors.New("return request not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyDecided    = errors.New("return request already decided")
)
