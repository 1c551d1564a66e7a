package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Access Control (ACL) ----

func ErrNotWhitelisted() *AppError {
	return New("ACL_001", "Caller is not whitelisted for trading", http.StatusForbidden)
}

func ErrNotOwner() *AppError {
	return New("ACL_002", "Caller does not own this wine lot", http.StatusForbidden)
}

func ErrUnauthorized() *AppError {
	return New("ACL_003", "Only the whitelist administrator may perform this action", http.StatusForbidden)
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

// ---- Asset State (AST) ----

func ErrWineNotFound() *AppError {
	return New("AST_001", "Wine lot not found", http.StatusNotFound)
}

func ErrAlreadyRedeemed() *AppError {
	return New("AST_002", "Wine lot has already been redeemed", http.StatusConflict)
}

func ErrNotMature() *AppError {
	return New("AST_003", "Wine lot has not reached its maturity date", http.StatusUnprocessableEntity)
}

func ErrOwnershipMismatch() *AppError {
	return New("AST_004", "Expected owner does not match current owner", http.StatusConflict)
}

// ---- Marketplace (MKT) ----

func ErrNotListed() *AppError {
	return New("MKT_001", "Wine lot is not listed for sale", http.StatusNotFound)
}

func ErrSelfPurchase() *AppError {
	return New("MKT_002", "Cannot buy your own listing", http.StatusConflict)
}

func ErrInsufficientPayment() *AppError {
	return New("MKT_003", "Payment is below the listing price", http.StatusPaymentRequired)
}

func ErrStaleListing() *AppError {
	return New("MKT_004", "Listing seller no longer owns the wine lot", http.StatusConflict)
}

// ---- Validation (VAL) ----

func ErrInvalidPrice() *AppError {
	return New("VAL_001", "Price must be greater than 0", http.StatusBadRequest)
}

func ErrInsufficientMintFee() *AppError {
	return New("VAL_002", "Mint fee is below the required minimum", http.StatusPaymentRequired)
}

// ---- Wallet & Settlement (PAY) ----

func ErrInsufficientFunds() *AppError {
	return New("PAY_001", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

func ErrWalletNotFound() *AppError {
	return New("PAY_002", "Wallet not found", http.StatusNotFound)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}
