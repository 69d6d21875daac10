package item_repository

import (
	"context"

	"github.com/shopfront/order-service/domain/models/entities"
)

// IItemRepository owns every write to an item's quantity on hand.
type IItemRepository interface {
	FindById(ctx context.Context, itemId string) (*entities.Item, error)

	Insert(ctx context.Context, item *entities.Item) error

	// Reserve decrements the quantity only when the stock on hand is strictly
	// greater than quantity, and returns the item after the decrement.
	Reserve(ctx context.Context, itemId string, quantity int64) (*entities.Item, error)

	// Release increments the quantity unconditionally and returns the item
	// after the increment.
	Release(ctx context.Context, itemId string, quantity int64) (*entities.Item, error)
}
