package services

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPackageNotFound = errors.New("credit package not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidOwner    = errors.New("owner type must be client or company")
)

// InsufficientCreditsError is a recoverable domain condition, surfaced to the
// caller as a 402-style response. It is never retried automatically.
type InsufficientCreditsError struct {
	Required  float64
	Available float64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %.2f, available %.2f", e.Required, e.Available)
}

// InsufficientBalanceError is the prepaid-wallet counterpart, carrying both
// figures for the structured 400 response.
type InsufficientBalanceError struct {
	Required  float64
	Available float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient prepaid balance: required %.2f, available %.2f", e.Required, e.Available)
}

// GatewayError wraps a failed call to the payment gateway. There is no retry
// queue; the caller re-initiates manually.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("asaas %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
