package domain

import (
	"context"

	"github.com/shopfront/order-service/domain/converter"
	"github.com/shopfront/order-service/domain/models/entities"
)

type OrderLineRequest struct {
	ItemId string
	// ProductId is optional; when set the item must belong to it.
	ProductId string
	Quantity  int64
}

type PlaceOrderRequest struct {
	Lines          []OrderLineRequest
	ContactDetail  entities.ContactDetail
	Vouchers       []string
	User           string
	Description    string
	IdempotencyKey string
}

// IOrderManager drives the order lifecycle. Every error it returns is an *OrderError.
type IOrderManager interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (string, error)
	UpdateStatus(ctx context.Context, orderId, status string) error
	CancelOrder(ctx context.Context, orderId string) error
	DeleteOrder(ctx context.Context, orderId string) error
	GetOrder(ctx context.Context, orderId string) (*converter.OrderView, error)
	PublicVouchers(ctx context.Context) ([]converter.VoucherView, error)
}
