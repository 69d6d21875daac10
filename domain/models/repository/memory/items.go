package memory

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	item_repository "github.com/shopfront/order-service/domain/models/repository/item"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type itemRepository struct {
	store *Store
}

func (store *Store) ItemRepository() item_repository.IItemRepository {
	return itemRepository{store}
}

func itemNotFound(itemId string) error {
	return repository.ErrorFactory(repository.NotFoundErr, "item not found",
		errors.Wrapf(repository.ErrorNotFound, "itemId: %s", itemId))
}

func (repo itemRepository) FindById(ctx context.Context, itemId string) (*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find item failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	record, ok := repo.store.items[itemId]
	if !ok {
		return nil, itemNotFound(itemId)
	}
	item := record.Item
	return &item, nil
}

func (repo itemRepository) Insert(ctx context.Context, item *entities.Item) error {
	if err := ctx.Err(); err != nil {
		return repository.ErrorFactory(repository.InternalErr, "insert item failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}

	if _, ok := repo.store.items[item.ID]; ok {
		return repository.ErrorFactory(repository.ConflictErr, "item already exists",
			errors.Wrapf(repository.ErrorDuplicateKey, "itemId: %s", item.ID))
	}

	item.CreatedAt = repo.store.clock()
	item.UpdatedAt = item.CreatedAt
	repo.store.items[item.ID] = itemRecord{*item}
	id := item.ID
	repo.store.journal(ctx, func() { delete(repo.store.items, id) })
	return nil
}

func (repo itemRepository) Reserve(ctx context.Context, itemId string, quantity int64) (*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "reserve item failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	record, ok := repo.store.items[itemId]
	if !ok {
		return nil, itemNotFound(itemId)
	}

	if !(record.Quantity > quantity) {
		return nil, repository.ErrorFactory(repository.ValidationErr, "insufficient stock",
			errors.Wrapf(repository.ErrorInsufficientStock, "itemId: %s, quantity: %d", itemId, quantity))
	}

	return repo.apply(ctx, record, -quantity), nil
}

func (repo itemRepository) Release(ctx context.Context, itemId string, quantity int64) (*entities.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "release item failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	record, ok := repo.store.items[itemId]
	if !ok {
		return nil, itemNotFound(itemId)
	}

	return repo.apply(ctx, record, quantity), nil
}

// apply must be called with the store mutex held.
func (repo itemRepository) apply(ctx context.Context, record itemRecord, delta int64) *entities.Item {
	previous := record
	record.Quantity += delta
	record.UpdatedAt = repo.store.clock()
	repo.store.items[record.ID] = record
	repo.store.journal(ctx, func() {
		// undo relative to the current value so interleaved writes from other
		// callers outside the transaction are kept
		current := repo.store.items[previous.ID]
		current.Quantity -= delta
		repo.store.items[previous.ID] = current
	})
	item := record.Item
	return &item
}
