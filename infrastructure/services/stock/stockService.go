package stock_service

import (
	"context"

	"github.com/shopfront/order-service/infrastructure/future"
)

type RequestStock struct {
	ItemId   string
	Quantity int64
}

type ResponseStock struct {
	ItemId    string
	Quantity  int64
	Available int64
	Result    bool
}

// IStockService moves item quantities on hand. Futures returned by the single
// actions carry a ResponseStock; batch futures carry []ResponseStock in
// request order and, on failure, the error of the first failing request.
type IStockService interface {
	Reserve(ctx context.Context, request RequestStock) future.IFuture
	Release(ctx context.Context, request RequestStock) future.IFuture

	BatchReserve(ctx context.Context, requests []RequestStock) future.IFuture
	BatchRelease(ctx context.Context, requests []RequestStock) future.IFuture
}
