package memory

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	product_repository "github.com/shopfront/order-service/domain/models/repository/product"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productRepository struct {
	store *Store
}

func (store *Store) ProductRepository() product_repository.IProductRepository {
	return productRepository{store}
}

func (repo productRepository) FindById(ctx context.Context, productId string) (*entities.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find product failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	record, ok := repo.store.products[productId]
	if !ok || record.DeletedAt != nil {
		return nil, repository.ErrorFactory(repository.NotFoundErr, "product not found",
			errors.Wrapf(repository.ErrorNotFound, "productId: %s", productId))
	}
	return record.clone(), nil
}

func (repo productRepository) Insert(ctx context.Context, product *entities.Product) error {
	if err := ctx.Err(); err != nil {
		return repository.ErrorFactory(repository.InternalErr, "insert product failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}

	for id, record := range repo.store.products {
		if id == product.ID || record.Name == product.Name {
			return repository.ErrorFactory(repository.ConflictErr, "product already exists",
				errors.Wrapf(repository.ErrorDuplicateKey, "name: %s", product.Name))
		}
	}

	product.CreatedAt = repo.store.clock()
	product.UpdatedAt = product.CreatedAt
	record := productRecord{*product}
	repo.store.products[product.ID] = productRecord{*record.clone()}
	id := product.ID
	repo.store.journal(ctx, func() { delete(repo.store.products, id) })
	return nil
}
