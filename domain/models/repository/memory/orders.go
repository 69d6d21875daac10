package memory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	order_repository "github.com/shopfront/order-service/domain/models/repository/order"
)

type orderRepository struct {
	store *Store
}

func (store *Store) OrderRepository() order_repository.IOrderRepository {
	return orderRepository{store}
}

func orderNotFound(orderId string) error {
	return repository.ErrorFactory(repository.NotFoundErr, "order not found",
		errors.Wrapf(repository.ErrorNotFound, "orderId: %s", orderId))
}

func (repo orderRepository) Insert(ctx context.Context, order *entities.Order) error {
	if err := ctx.Err(); err != nil {
		return repository.ErrorFactory(repository.InternalErr, "insert order failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	if order.ID == "" {
		order.ID = entities.GenerateOrderId()
	}

	if _, ok := repo.store.orders[order.ID]; ok {
		return repository.ErrorFactory(repository.ConflictErr, "order already exists",
			errors.Wrapf(repository.ErrorDuplicateKey, "orderId: %s", order.ID))
	}

	order.DocVersion = entities.DocumentVersion
	order.CreatedAt = repo.store.clock()
	order.UpdatedAt = order.CreatedAt
	repo.store.orders[order.ID] = orderRecord{*orderRecord{*order}.clone()}
	id := order.ID
	repo.store.journal(ctx, func() { delete(repo.store.orders, id) })
	return nil
}

func (repo orderRepository) FindById(ctx context.Context, orderId string) (*entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find order failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	record, ok := repo.store.orders[orderId]
	if !ok {
		return nil, orderNotFound(orderId)
	}
	return record.clone(), nil
}

func (repo orderRepository) UpdateStatus(ctx context.Context, orderId string, status string, shipDate *time.Time) (*entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "update order status failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	record, ok := repo.store.orders[orderId]
	if !ok {
		return nil, orderNotFound(orderId)
	}

	previous := orderRecord{*record.clone()}
	record.Status = status
	if shipDate != nil {
		date := shipDate.UTC()
		record.ShipDate = &date
	}
	record.UpdatedAt = repo.store.clock()
	repo.store.orders[orderId] = record
	repo.store.journal(ctx, func() { repo.store.orders[orderId] = previous })
	return record.clone(), nil
}

func (repo orderRepository) RemoveById(ctx context.Context, orderId string) error {
	if err := ctx.Err(); err != nil {
		return repository.ErrorFactory(repository.InternalErr, "remove order failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	record, ok := repo.store.orders[orderId]
	if !ok {
		return orderNotFound(orderId)
	}

	delete(repo.store.orders, orderId)
	repo.store.journal(ctx, func() { repo.store.orders[orderId] = record })
	return nil
}
