package product_repository

import (
	"context"

	"github.com/shopfront/order-service/domain/models/entities"
)

type IProductRepository interface {
	FindById(ctx context.Context, productId string) (*entities.Product, error)

	Insert(ctx context.Context, product *entities.Product) error
}
