package order_repository

import (
	"context"
	"time"

	"github.com/shopfront/order-service/domain/models/entities"
)

type IOrderRepository interface {
	Insert(ctx context.Context, order *entities.Order) error

	FindById(ctx context.Context, orderId string) (*entities.Order, error)

	// UpdateStatus sets the status and, when shipDate is not nil, the ship date.
	UpdateStatus(ctx context.Context, orderId string, status string, shipDate *time.Time) (*entities.Order, error)

	// RemoveById deletes the order document; a missing order is reported as not found.
	RemoveById(ctx context.Context, orderId string) error
}
