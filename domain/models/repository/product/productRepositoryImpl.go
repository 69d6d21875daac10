package product_repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	"github.com/shopfront/order-service/infrastructure/mongoadapter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	collectionName string = "products"
)

type iProductRepositoryImpl struct {
	mongoAdapter *mongoadapter.Mongo
}

func NewProductRepository(mongoDriver *mongoadapter.Mongo) IProductRepository {
	return &iProductRepositoryImpl{mongoDriver}
}

func (repo iProductRepositoryImpl) FindById(ctx context.Context, productId string) (*entities.Product, error) {
	var product entities.Product
	err := repo.mongoAdapter.FindOne(ctx, collectionName, bson.D{{"_id", productId}, {"deletedAt", nil}}, &product)
	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "product not found",
				errors.Wrapf(repository.ErrorNotFound, "productId: %s", productId))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "find product failed",
			errors.Wrap(err, "FindOne products failed"))
	}
	return &product, nil
}

func (repo iProductRepositoryImpl) Insert(ctx context.Context, product *entities.Product) error {
	if product.ID == "" {
		product.ID = primitive.NewObjectID().Hex()
	}
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt

	if _, err := repo.mongoAdapter.InsertOne(ctx, collectionName, product); err != nil {
		if repo.mongoAdapter.IsDupError(err) {
			return repository.ErrorFactory(repository.ConflictErr, "product already exists",
				errors.Wrapf(repository.ErrorDuplicateKey, "name: %s", product.Name))
		}
		return repository.ErrorFactory(repository.InternalErr, "insert product failed",
			errors.Wrap(err, "InsertOne products failed"))
	}
	return nil
}
