package item_repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	"github.com/shopfront/order-service/infrastructure/mongoadapter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName string = "items"
)

type iItemRepositoryImpl struct {
	mongoAdapter *mongoadapter.Mongo
}

func NewItemRepository(mongoDriver *mongoadapter.Mongo) IItemRepository {
	return &iItemRepositoryImpl{mongoDriver}
}

func (repo iItemRepositoryImpl) FindById(ctx context.Context, itemId string) (*entities.Item, error) {
	var item entities.Item
	err := repo.mongoAdapter.FindOne(ctx, collectionName, bson.D{{"_id", itemId}}, &item)
	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "item not found",
				errors.Wrapf(repository.ErrorNotFound, "itemId: %s", itemId))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "find item failed",
			errors.Wrap(err, "FindOne items failed"))
	}
	return &item, nil
}

func (repo iItemRepositoryImpl) Insert(ctx context.Context, item *entities.Item) error {
	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt

	if _, err := repo.mongoAdapter.InsertOne(ctx, collectionName, item); err != nil {
		if repo.mongoAdapter.IsDupError(err) {
			return repository.ErrorFactory(repository.ConflictErr, "item already exists",
				errors.Wrapf(repository.ErrorDuplicateKey, "itemId: %s", item.ID))
		}
		return repository.ErrorFactory(repository.InternalErr, "insert item failed",
			errors.Wrap(err, "InsertOne items failed"))
	}
	return nil
}

func (repo iItemRepositoryImpl) Reserve(ctx context.Context, itemId string, quantity int64) (*entities.Item, error) {
	var item entities.Item
	err := repo.mongoAdapter.FindOneAndUpdate(ctx, collectionName,
		bson.D{{"_id", itemId}, {"quantity", bson.D{{"$gt", quantity}}}},
		bson.D{
			{"$inc", bson.D{{"quantity", -quantity}}},
			{"$set", bson.D{{"updatedAt", time.Now().UTC()}}},
		},
		&item, options.FindOneAndUpdate().SetReturnDocument(options.After))

	if err == nil {
		return &item, nil
	}

	if !repo.mongoAdapter.NoDocument(err) {
		return nil, repository.ErrorFactory(repository.InternalErr, "reserve item failed",
			errors.Wrap(err, "FindOneAndUpdate items failed"))
	}

	// the conditional write matched nothing: either the item is gone or the stock is too low
	if _, err := repo.FindById(ctx, itemId); err != nil {
		return nil, err
	}

	return nil, repository.ErrorFactory(repository.ValidationErr, "insufficient stock",
		errors.Wrapf(repository.ErrorInsufficientStock, "itemId: %s, quantity: %d", itemId, quantity))
}

func (repo iItemRepositoryImpl) Release(ctx context.Context, itemId string, quantity int64) (*entities.Item, error) {
	var item entities.Item
	err := repo.mongoAdapter.FindOneAndUpdate(ctx, collectionName,
		bson.D{{"_id", itemId}},
		bson.D{
			{"$inc", bson.D{{"quantity", quantity}}},
			{"$set", bson.D{{"updatedAt", time.Now().UTC()}}},
		},
		&item, options.FindOneAndUpdate().SetReturnDocument(options.After))

	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "item not found",
				errors.Wrapf(repository.ErrorNotFound, "itemId: %s", itemId))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "release item failed",
			errors.Wrap(err, "FindOneAndUpdate items failed"))
	}
	return &item, nil
}
