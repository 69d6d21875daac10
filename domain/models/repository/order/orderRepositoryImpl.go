package order_repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	"github.com/shopfront/order-service/infrastructure/mongoadapter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName string = "orders"
)

type iOrderRepositoryImpl struct {
	mongoAdapter *mongoadapter.Mongo
}

func NewOrderRepository(mongoDriver *mongoadapter.Mongo) IOrderRepository {
	return &iOrderRepositoryImpl{mongoDriver}
}

func (repo iOrderRepositoryImpl) Insert(ctx context.Context, order *entities.Order) error {
	if order.ID == "" {
		order.ID = entities.GenerateOrderId()
	}
	order.DocVersion = entities.DocumentVersion
	order.CreatedAt = time.Now().UTC()
	order.UpdatedAt = order.CreatedAt

	if _, err := repo.mongoAdapter.InsertOne(ctx, collectionName, order); err != nil {
		if repo.mongoAdapter.IsDupError(err) {
			return repository.ErrorFactory(repository.ConflictErr, "order already exists",
				errors.Wrapf(repository.ErrorDuplicateKey, "orderId: %s", order.ID))
		}
		return repository.ErrorFactory(repository.InternalErr, "insert order failed",
			errors.Wrap(err, "InsertOne orders failed"))
	}
	return nil
}

func (repo iOrderRepositoryImpl) FindById(ctx context.Context, orderId string) (*entities.Order, error) {
	var order entities.Order
	err := repo.mongoAdapter.FindOne(ctx, collectionName, bson.D{{"_id", orderId}}, &order)
	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "order not found",
				errors.Wrapf(repository.ErrorNotFound, "orderId: %s", orderId))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "find order failed",
			errors.Wrap(err, "FindOne orders failed"))
	}
	return &order, nil
}

func (repo iOrderRepositoryImpl) UpdateStatus(ctx context.Context, orderId string, status string, shipDate *time.Time) (*entities.Order, error) {
	fields := bson.D{{"status", status}, {"updatedAt", time.Now().UTC()}}
	if shipDate != nil {
		fields = append(fields, bson.E{Key: "shipDate", Value: shipDate.UTC()})
	}

	var order entities.Order
	err := repo.mongoAdapter.FindOneAndUpdate(ctx, collectionName,
		bson.D{{"_id", orderId}}, bson.D{{"$set", fields}},
		&order, options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "order not found",
				errors.Wrapf(repository.ErrorNotFound, "orderId: %s", orderId))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "update order status failed",
			errors.Wrap(err, "FindOneAndUpdate orders failed"))
	}
	return &order, nil
}

func (repo iOrderRepositoryImpl) RemoveById(ctx context.Context, orderId string) error {
	result, err := repo.mongoAdapter.DeleteOne(ctx, collectionName, bson.D{{"_id", orderId}})
	if err != nil {
		return repository.ErrorFactory(repository.InternalErr, "remove order failed",
			errors.Wrap(err, "DeleteOne orders failed"))
	}

	if result.DeletedCount != 1 {
		return repository.ErrorFactory(repository.NotFoundErr, "order not found",
			errors.Wrapf(repository.ErrorNotFound, "orderId: %s", orderId))
	}
	return nil
}
