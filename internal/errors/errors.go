// Package errors provides custom error types for the Royal Footwear API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code so that errors.Is(err, ErrEmptyCart) holds for
// values derived from the sentinel through Wrap or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    sentinel.Details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WithDetails creates a new AppError with a custom message and structured details
// that are rendered to the client alongside the code.
func WithDetails(sentinel *AppError, message string, details map[string]any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		Details:    details,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked. Please try again later.", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
	// ErrPersistence marks a storage failure or an exhausted write retry. Callers must not assume partial success.
	ErrPersistence = &AppError{Code: "PERSISTENCE_FAILURE", Message: "Could not save your changes, please try again", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "Email is already registered", StatusCode: http.StatusConflict}
	ErrIncorrectPassword = &AppError{Code: "INCORRECT_PASSWORD", Message: "Current password is incorrect", StatusCode: http.StatusBadRequest}
)

// Product errors.
var (
	ErrProductNotFound  = &AppError{Code: "PRODUCT_NOT_FOUND", Message: "Product not found", StatusCode: http.StatusNotFound}
	ErrColorUnavailable = &AppError{Code: "COLOR_UNAVAILABLE", Message: "Selected color not available", StatusCode: http.StatusBadRequest}
	ErrSizeUnavailable  = &AppError{Code: "SIZE_UNAVAILABLE", Message: "Selected size is out of stock", StatusCode: http.StatusBadRequest}
)

// Cart errors.
var (
	ErrCartItemNotFound  = &AppError{Code: "CART_ITEM_NOT_FOUND", Message: "Item not found in cart", StatusCode: http.StatusNotFound}
	ErrDuplicateCartItem = &AppError{Code: "DUPLICATE_CART_ITEM", Message: "This item is already in your cart", StatusCode: http.StatusConflict}
	ErrInvalidQuantity   = &AppError{Code: "INVALID_QUANTITY", Message: "Quantity must be at least 1", StatusCode: http.StatusBadRequest}
)

// Wishlist errors.
var (
	ErrWishlistNotFound     = &AppError{Code: "WISHLIST_NOT_FOUND", Message: "Wishlist not found", StatusCode: http.StatusNotFound}
	ErrWishlistItemNotFound = &AppError{Code: "WISHLIST_ITEM_NOT_FOUND", Message: "Product not found in wishlist", StatusCode: http.StatusNotFound}
	ErrAlreadyInWishlist    = &AppError{Code: "ALREADY_IN_WISHLIST", Message: "Product already in wishlist", StatusCode: http.StatusConflict}
)

// Order errors.
var (
	ErrOrderNotFound           = &AppError{Code: "ORDER_NOT_FOUND", Message: "Order not found", StatusCode: http.StatusNotFound}
	ErrEmptyCart               = &AppError{Code: "EMPTY_CART", Message: "Your cart is empty", StatusCode: http.StatusBadRequest}
	ErrInvalidStatusTransition = &AppError{Code: "INVALID_STATUS_TRANSITION", Message: "Order status cannot change that way", StatusCode: http.StatusConflict}
)
