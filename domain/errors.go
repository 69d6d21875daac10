package domain

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/infrastructure/future"
)

type ErrorKind string

const (
	InsufficientStock   ErrorKind = "InsufficientStock"
	OrderNotFound       ErrorKind = "OrderNotFound"
	ItemNotFound        ErrorKind = "ItemNotFound"
	ProductNotFound     ErrorKind = "ProductNotFound"
	InvalidRequestField ErrorKind = "InvalidRequestField"
	MissingRequestField ErrorKind = "MissingRequestField"
	InvalidStatus       ErrorKind = "InvalidStatus"
	IllegalTransition   ErrorKind = "IllegalTransition"
	Validation          ErrorKind = "Validation"
	DuplicateRequest    ErrorKind = "DuplicateRequest"
	Transaction         ErrorKind = "Transaction"
)

// OrderError is the only error type the order manager returns. Message is
// safe to show to the caller; Reason keeps the underlying cause for logs.
type OrderError struct {
	Kind    ErrorKind
	Code    future.ErrorCode
	Message string
	Reason  error
}

func (e *OrderError) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Reason)
}

func (e *OrderError) Unwrap() error {
	return e.Reason
}

// KindOf returns the kind of err, or an empty kind when err is not an OrderError.
func KindOf(err error) ErrorKind {
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		return orderErr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

func ErrInsufficientStock(productName string, reason error) *OrderError {
	return &OrderError{InsufficientStock, future.ValidationError, fmt.Sprintf("%s not available", productName), reason}
}

func ErrOrderNotFound(orderId string, reason error) *OrderError {
	return &OrderError{OrderNotFound, future.NotFound, "order not found", errors.Wrapf(reasonOf(reason), "orderId: %s", orderId)}
}

func ErrItemNotFound(itemId string, reason error) *OrderError {
	return &OrderError{ItemNotFound, future.NotFound, fmt.Sprintf("item %s not found", itemId), reason}
}

func ErrProductNotFound(productId string, reason error) *OrderError {
	return &OrderError{ProductNotFound, future.NotFound, fmt.Sprintf("product %s not found", productId), reason}
}

func ErrInvalidRequestField(key string) *OrderError {
	return &OrderError{InvalidRequestField, future.ValidationError, fmt.Sprintf("Invalid request body key \"%s\"", key), nil}
}

func ErrMissingRequestField(key string) *OrderError {
	return &OrderError{MissingRequestField, future.ValidationError, fmt.Sprintf("Missing request body key \"%s\"", key), nil}
}

func ErrInvalidStatus(status string) *OrderError {
	return &OrderError{InvalidStatus, future.ValidationError, fmt.Sprintf("invalid order status \"%s\"", status), nil}
}

func ErrIllegalTransition(from, to string, reason error) *OrderError {
	return &OrderError{IllegalTransition, future.NotAccepted, fmt.Sprintf("order status cannot change from %s to %s", from, to), reason}
}

func ErrValidation(message string) *OrderError {
	return &OrderError{Validation, future.ValidationError, message, nil}
}

func ErrDuplicateRequest(key string) *OrderError {
	return &OrderError{DuplicateRequest, future.Conflict, "request is already in progress", errors.Errorf("idempotency key: %s", key)}
}

func ErrTransaction(reason error) *OrderError {
	return &OrderError{Transaction, future.InternalError, "Unknown Error", reason}
}

func reasonOf(reason error) error {
	if reason == nil {
		return errors.New("not found")
	}
	return reason
}
