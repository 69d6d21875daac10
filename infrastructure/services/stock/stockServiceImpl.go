package stock_service

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/repository"
	item_repository "github.com/shopfront/order-service/domain/models/repository/item"
	"github.com/shopfront/order-service/infrastructure/future"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/shopfront/order-service/infrastructure/metrics"
	worker_pool "github.com/shopfront/order-service/infrastructure/workerPool"
)

const (
	reserveAction string = "reserve"
	releaseAction string = "release"
)

type iStockServiceImpl struct {
	itemRepository item_repository.IItemRepository
	concurrency    int
	logger         logger.Logger
}

func NewStockService(itemRepository item_repository.IItemRepository, concurrency int, log logger.Logger) IStockService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &iStockServiceImpl{itemRepository, concurrency, log}
}

func (stock iStockServiceImpl) Reserve(ctx context.Context, request RequestStock) future.IFuture {
	item, err := stock.itemRepository.Reserve(ctx, request.ItemId, request.Quantity)
	if err != nil {
		return stock.failed(ctx, reserveAction, request, err)
	}

	metrics.StockAction(reserveAction, metrics.ResultSuccess)
	stock.logger.FromContext(ctx).Debug("stock reserved",
		"fn", "Reserve",
		"itemId", request.ItemId,
		"quantity", request.Quantity,
		"available", item.Quantity)

	return future.Factory().SetCapacity(1).
		SetData(ResponseStock{
			ItemId:    request.ItemId,
			Quantity:  request.Quantity,
			Available: item.Quantity,
			Result:    true,
		}).
		BuildAndSend()
}

func (stock iStockServiceImpl) Release(ctx context.Context, request RequestStock) future.IFuture {
	item, err := stock.itemRepository.Release(ctx, request.ItemId, request.Quantity)
	if err != nil {
		return stock.failed(ctx, releaseAction, request, err)
	}

	metrics.StockAction(releaseAction, metrics.ResultSuccess)
	stock.logger.FromContext(ctx).Debug("stock released",
		"fn", "Release",
		"itemId", request.ItemId,
		"quantity", request.Quantity,
		"available", item.Quantity)

	return future.Factory().SetCapacity(1).
		SetData(ResponseStock{
			ItemId:    request.ItemId,
			Quantity:  request.Quantity,
			Available: item.Quantity,
			Result:    true,
		}).
		BuildAndSend()
}

func (stock iStockServiceImpl) failed(ctx context.Context, action string, request RequestStock, err error) future.IFuture {
	response := ResponseStock{
		ItemId:   request.ItemId,
		Quantity: request.Quantity,
		Result:   false,
	}

	var code future.ErrorCode
	var message string
	switch {
	case repository.IsInsufficientStock(err):
		metrics.StockAction(action, metrics.ResultInsufficient)
		code, message = future.ValidationError, "Insufficient Stock"
	case repository.IsNotFound(err):
		metrics.StockAction(action, metrics.ResultNotFound)
		code, message = future.NotFound, "Item Not Found"
	default:
		metrics.StockAction(action, metrics.ResultError)
		code, message = future.InternalError, "Unknown Error"
	}

	stock.logger.FromContext(ctx).Debug("stock action failed",
		"fn", "failed",
		"action", action,
		"itemId", request.ItemId,
		"quantity", request.Quantity,
		"error", err)

	return future.Factory().SetCapacity(1).
		SetError(code, message, errors.Wrapf(err, "stock %s failed", action)).
		SetData(response).
		BuildAndSend()
}

// BatchReserve reserves every request, at most concurrency of them in flight,
// and waits for all of them. It does not undo the successful ones when a
// sibling fails; the caller's transaction is expected to roll them back.
func (stock iStockServiceImpl) BatchReserve(ctx context.Context, requests []RequestStock) future.IFuture {
	pool, err := worker_pool.Factory(stock.concurrency)
	if err != nil {
		return future.Factory().SetCapacity(1).
			SetError(future.InternalError, "Unknown Error", errors.Wrap(err, "worker pool creation failed")).
			BuildAndSend()
	}

	futures := make([]future.IFuture, len(requests))
	for i := range requests {
		index := i
		if err := pool.SubmitTask(func() {
			futures[index] = stock.Reserve(ctx, requests[index])
		}); err != nil {
			pool.Wait()
			return future.Factory().SetCapacity(1).
				SetError(future.InternalError, "Unknown Error", errors.Wrap(err, "SubmitTask failed")).
				BuildAndSend()
		}
	}
	pool.Wait()

	return collect(futures)
}

func (stock iStockServiceImpl) BatchRelease(ctx context.Context, requests []RequestStock) future.IFuture {
	futures := make([]future.IFuture, 0, len(requests))
	for _, request := range requests {
		iFuture := stock.Release(ctx, request)
		futures = append(futures, iFuture)
	}
	return collect(futures)
}

// collect drains every future and reports the first error in request order.
func collect(futures []future.IFuture) future.IFuture {
	responses := make([]ResponseStock, 0, len(futures))
	var firstError future.IErrorFuture
	for _, iFuture := range futures {
		futureData := iFuture.Get()
		if futureData == nil {
			if firstError == nil {
				firstError = future.Factory().SetError(future.InternalError, "Unknown Error",
					errors.New("stock future closed without data")).BuildError()
			}
			continue
		}

		if response, ok := futureData.Data().(ResponseStock); ok {
			responses = append(responses, response)
		}

		if futureData.Error() != nil && firstError == nil {
			firstError = futureData.Error()
		}
	}

	if firstError != nil {
		return future.Factory().SetCapacity(1).
			SetErrorOf(firstError).
			SetData(responses).
			BuildAndSend()
	}

	return future.Factory().SetCapacity(1).
		SetData(responses).
		BuildAndSend()
}
