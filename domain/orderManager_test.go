package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository/memory"
	"github.com/shopfront/order-service/domain/states"
	"github.com/shopfront/order-service/infrastructure/cache"
	"github.com/shopfront/order-service/infrastructure/events"
	"github.com/shopfront/order-service/infrastructure/future"
	"github.com/shopfront/order-service/infrastructure/logger"
	stock_service "github.com/shopfront/order-service/infrastructure/services/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mutex  sync.Mutex
	events []events.OrderEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.OrderEvent) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.EventType {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

type fixture struct {
	store       *memory.Store
	manager     IOrderManager
	publisher   *recordingPublisher
	idempotency *cache.MemoryIdempotencyStore
}

type fixtureOption func(*Dependencies)

func withStrictTransitions() fixtureOption {
	return func(deps *Dependencies) { deps.Policy = states.NewTransitionPolicy(true) }
}

func withConcurrency(concurrency int) fixtureOption {
	return func(deps *Dependencies) {
		deps.StockService = stock_service.NewStockService(deps.ItemRepository, concurrency, logger.NewNop())
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	store := memory.NewStore()
	publisher := &recordingPublisher{}
	idempotency := cache.NewMemoryIdempotencyStore(time.Hour)

	deps := Dependencies{
		TxManager:         store,
		ItemRepository:    store.ItemRepository(),
		ProductRepository: store.ProductRepository(),
		VoucherRepository: store.VoucherRepository(),
		OrderRepository:   store.OrderRepository(),
		StockService:      stock_service.NewStockService(store.ItemRepository(), 1, logger.NewNop()),
		Idempotency:       idempotency,
		Publisher:         publisher,
		Logger:            logger.NewNop(),
		Currency:          "VND",
		Clock:             func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &fixture{
		store:       store,
		manager:     NewOrderManager(deps),
		publisher:   publisher,
		idempotency: idempotency,
	}
}

func (f *fixture) createProduct(t *testing.T, name string, price, discount float64, category string) *entities.Product {
	product := &entities.Product{
		Name:     name,
		Price:    price,
		Discount: discount,
		Category: category,
		Pictures: []string{"https://cdn.example.com/" + name + ".jpg"},
	}
	require.NoError(t, f.store.ProductRepository().Insert(context.Background(), product))
	return product
}

func (f *fixture) createItem(t *testing.T, product *entities.Product, quantity int64) *entities.Item {
	item := &entities.Item{ProductId: product.ID, Size: entities.SizeM, Color: "white", Quantity: quantity}
	require.NoError(t, f.store.ItemRepository().Insert(context.Background(), item))
	return item
}

func (f *fixture) createVoucher(t *testing.T, code string, discount float64, category string, expiresIn time.Time, public bool) {
	voucher := &entities.Voucher{Code: code, Discount: discount, Category: category, ExpiresIn: expiresIn, Public: public}
	require.NoError(t, f.store.VoucherRepository().Insert(context.Background(), voucher))
}

func (f *fixture) quantityOf(t *testing.T, itemId string) int64 {
	item, err := f.store.ItemRepository().FindById(context.Background(), itemId)
	require.NoError(t, err)
	return item.Quantity
}

func contactDetail() entities.ContactDetail {
	return entities.ContactDetail{
		FirstName:     "Lan",
		LastName:      "Nguyen",
		Phone:         "0901234567",
		Province:      "Ha Noi",
		AddressDetail: "12 Kim Ma",
	}
}

func orderRequest(lines ...OrderLineRequest) PlaceOrderRequest {
	return PlaceOrderRequest{Lines: lines, ContactDetail: contactDetail()}
}

func requireKind(t *testing.T, err error, kind ErrorKind) *OrderError {
	t.Helper()
	require.Error(t, err)
	var orderErr *OrderError
	require.True(t, errors.As(err, &orderErr), "unexpected error type: %v", err)
	require.Equal(t, kind, orderErr.Kind, "unexpected error: %v", err)
	return orderErr
}

func TestPlaceOrderConcurrentBuyersOneWins(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 5)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			_, results[index] = f.manager.PlaceOrder(context.Background(),
				orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 4}))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, InsufficientStock)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), f.quantityOf(t, item.ID))
}

func TestPlaceOrderNeverOversells(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		f := newFixture(t, withConcurrency(concurrency))
		product := f.createProduct(t, "Canvas Tote", 15, 0, "bags")
		item := f.createItem(t, product, 11)
		other := f.createItem(t, product, 100)

		var wg sync.WaitGroup
		results := make([]error, 30)
		for i := range results {
			wg.Add(1)
			go func(index int) {
				defer wg.Done()
				_, results[index] = f.manager.PlaceOrder(context.Background(), orderRequest(
					OrderLineRequest{ItemId: other.ID, Quantity: 1},
					OrderLineRequest{ItemId: item.ID, Quantity: 1},
				))
			}(i)
		}
		wg.Wait()

		placed := 0
		for _, err := range results {
			if err == nil {
				placed++
				continue
			}
			requireKind(t, err, InsufficientStock)
		}

		assert.Equal(t, 10, placed, "concurrency %d", concurrency)
		assert.Equal(t, int64(1), f.quantityOf(t, item.ID))
		// the failed orders released the sibling line through rollback
		assert.Equal(t, int64(90), f.quantityOf(t, other.ID))
	}
}

func TestPlaceOrderPricesWithProductDiscountAndVoucher(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 10, "shirts")
	item := f.createItem(t, product, 10)
	f.createVoucher(t, "V", 20, "", fixedNow.Add(24*time.Hour), false)
	f.createVoucher(t, "EXPIRED", 50, "", fixedNow.Add(-time.Hour), false)
	f.createVoucher(t, "SHOES", 50, "shoes", fixedNow.Add(time.Hour), false)

	req := orderRequest(OrderLineRequest{ItemId: item.ID, ProductId: product.ID, Quantity: 2})
	req.Vouchers = []string{"V", "EXPIRED", "SHOES", "UNKNOWN"}
	orderId, err := f.manager.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	order, err := f.store.OrderRepository().FindById(context.Background(), orderId)
	require.NoError(t, err)
	assert.Equal(t, string(states.OrderPlacedStatus), order.Status)
	assert.True(t, fixedNow.Equal(order.OrderDate))
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "100", order.Lines[0].UnitPrice.Amount)
	assert.Equal(t, float64(30), order.Lines[0].DiscountPercent)
	assert.Equal(t, "70", order.Lines[0].FinalUnitPrice.Amount)
	assert.Equal(t, "Linen Shirt", order.Lines[0].ProductName)
	assert.Equal(t, "200", order.OriginalPrice.Amount)
	assert.Equal(t, "140", order.TotalPrice.Amount)
	assert.Equal(t, "VND", order.TotalPrice.Currency)
	assert.Equal(t, []string{"V", "EXPIRED", "SHOES", "UNKNOWN"}, order.Vouchers)
	assert.Equal(t, int64(8), f.quantityOf(t, item.ID))
	assert.Equal(t, []events.EventType{events.OrderPlaced}, f.publisher.types())
}

func TestPlaceOrderVoucherReusable(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)
	f.createVoucher(t, "V", 20, "", fixedNow.Add(time.Hour), false)

	for i := 0; i < 2; i++ {
		req := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 1})
		req.Vouchers = []string{"V"}
		orderId, err := f.manager.PlaceOrder(context.Background(), req)
		require.NoError(t, err)
		order, err := f.store.OrderRepository().FindById(context.Background(), orderId)
		require.NoError(t, err)
		assert.Equal(t, "80", order.TotalPrice.Amount)
	}
}

func TestDeletePlacedOrderRestocks(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 3}))
	require.NoError(t, err)
	assert.Equal(t, int64(7), f.quantityOf(t, item.ID))

	require.NoError(t, f.manager.DeleteOrder(context.Background(), orderId))
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))

	_, err = f.manager.GetOrder(context.Background(), orderId)
	requireKind(t, err, OrderNotFound)

	err = f.manager.DeleteOrder(context.Background(), orderId)
	orderErr := requireKind(t, err, OrderNotFound)
	assert.Equal(t, future.NotFound, orderErr.Code)
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
}

func TestDeleteDoneOrderKeepsStock(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 3}))
	require.NoError(t, err)
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "done"))

	order, err := f.store.OrderRepository().FindById(context.Background(), orderId)
	require.NoError(t, err)
	require.NotNil(t, order.ShipDate)
	assert.True(t, fixedNow.Equal(*order.ShipDate))

	require.NoError(t, f.manager.DeleteOrder(context.Background(), orderId))
	assert.Equal(t, int64(7), f.quantityOf(t, item.ID))
}

func TestDeleteCancelledOrderKeepsStock(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 3}))
	require.NoError(t, err)
	require.NoError(t, f.manager.CancelOrder(context.Background(), orderId))
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))

	require.NoError(t, f.manager.DeleteOrder(context.Background(), orderId))
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
}

func TestPlaceOrderExactStockRejected(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 3)

	_, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 3}))
	orderErr := requireKind(t, err, InsufficientStock)
	assert.Equal(t, future.ValidationError, orderErr.Code)
	assert.Equal(t, "Linen Shirt not available", orderErr.Message)
	assert.Equal(t, int64(3), f.quantityOf(t, item.ID))
	assert.Empty(t, f.publisher.types())
}

func TestPlaceOrderFailureRollsBackEveryLine(t *testing.T) {
	f := newFixture(t)
	shirt := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	hat := f.createProduct(t, "Straw Hat", 30, 0, "hats")
	shirtItem := f.createItem(t, shirt, 10)
	hatItem := f.createItem(t, hat, 2)
	otherShirt := f.createItem(t, shirt, 1)

	_, err := f.manager.PlaceOrder(context.Background(), orderRequest(
		OrderLineRequest{ItemId: shirtItem.ID, Quantity: 4},
		OrderLineRequest{ItemId: hatItem.ID, Quantity: 2},
		OrderLineRequest{ItemId: otherShirt.ID, Quantity: 1},
	))
	orderErr := requireKind(t, err, InsufficientStock)
	assert.Equal(t, "Straw Hat not available", orderErr.Message)

	assert.Equal(t, int64(10), f.quantityOf(t, shirtItem.ID))
	assert.Equal(t, int64(2), f.quantityOf(t, hatItem.ID))
	assert.Equal(t, int64(1), f.quantityOf(t, otherShirt.ID))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	noContact := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 1})
	noContact.ContactDetail.Phone = " "

	cases := map[string]PlaceOrderRequest{
		"no lines":       orderRequest(),
		"zero quantity":  orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 0}),
		"negative":       orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: -2}),
		"empty item":     orderRequest(OrderLineRequest{Quantity: 1}),
		"missing phone":  noContact,
		"second invalid": orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 1}, OrderLineRequest{ItemId: item.ID}),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.manager.PlaceOrder(context.Background(), req)
			orderErr := requireKind(t, err, Validation)
			assert.Equal(t, future.ValidationError, orderErr.Code)
		})
	}
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
}

func TestPlaceOrderUnknownReferences(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)
	orphan := &entities.Item{ProductId: "missing-product", Size: entities.SizeS, Quantity: 5}
	require.NoError(t, f.store.ItemRepository().Insert(context.Background(), orphan))

	_, err := f.manager.PlaceOrder(context.Background(), orderRequest(
		OrderLineRequest{ItemId: item.ID, Quantity: 1},
		OrderLineRequest{ItemId: "missing", Quantity: 1},
	))
	requireKind(t, err, ItemNotFound)

	_, err = f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, ProductId: "other", Quantity: 1}))
	requireKind(t, err, ItemNotFound)

	_, err = f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: orphan.ID, Quantity: 1}))
	requireKind(t, err, ProductNotFound)

	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
	assert.Equal(t, int64(5), f.quantityOf(t, orphan.ID))
}

func TestUpdateStatusPermissive(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2}))
	require.NoError(t, err)

	err = f.manager.UpdateStatus(context.Background(), orderId, "shipped")
	orderErr := requireKind(t, err, InvalidStatus)
	assert.Equal(t, future.ValidationError, orderErr.Code)

	err = f.manager.UpdateStatus(context.Background(), "missing", "approved")
	requireKind(t, err, OrderNotFound)

	// permissive mode skips the transition table
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "done"))
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "placed"))
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "approved"))
	assert.Equal(t, int64(8), f.quantityOf(t, item.ID))

	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "cancelled"))
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))

	// a second cancel does not restock again
	require.NoError(t, f.manager.CancelOrder(context.Background(), orderId))
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))

	err = f.manager.UpdateStatus(context.Background(), orderId, "placed")
	orderErr = requireKind(t, err, IllegalTransition)
	assert.Equal(t, future.NotAccepted, orderErr.Code)
	assert.True(t, errors.Is(err, states.ErrorReopenCancelled))

	view, err := f.manager.GetOrder(context.Background(), orderId)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", view.Status)

	assert.Equal(t, []events.EventType{
		events.OrderPlaced,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
		events.OrderStatusChanged,
	}, f.publisher.types())
}

func TestUpdateStatusStrict(t *testing.T) {
	f := newFixture(t, withStrictTransitions())
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2}))
	require.NoError(t, err)

	err = f.manager.UpdateStatus(context.Background(), orderId, "done")
	requireKind(t, err, IllegalTransition)

	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "approved"))
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "done"))

	err = f.manager.CancelOrder(context.Background(), orderId)
	requireKind(t, err, IllegalTransition)
	assert.Equal(t, int64(8), f.quantityOf(t, item.ID))
}

func TestCancelApprovedOrderRestocksEveryLine(t *testing.T) {
	f := newFixture(t, withStrictTransitions())
	shirt := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	hat := f.createProduct(t, "Straw Hat", 30, 0, "hats")
	shirtItem := f.createItem(t, shirt, 10)
	hatItem := f.createItem(t, hat, 5)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(
		OrderLineRequest{ItemId: shirtItem.ID, Quantity: 3},
		OrderLineRequest{ItemId: hatItem.ID, Quantity: 4},
	))
	require.NoError(t, err)
	require.NoError(t, f.manager.UpdateStatus(context.Background(), orderId, "approved"))
	require.NoError(t, f.manager.CancelOrder(context.Background(), orderId))

	assert.Equal(t, int64(10), f.quantityOf(t, shirtItem.ID))
	assert.Equal(t, int64(5), f.quantityOf(t, hatItem.ID))
}

func TestConcurrentDeleteRestocksOnce(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 4}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			results[index] = f.manager.DeleteOrder(context.Background(), orderId)
		}(i)
	}
	wg.Wait()

	deleted := 0
	for _, err := range results {
		if err == nil {
			deleted++
			continue
		}
		requireKind(t, err, OrderNotFound)
	}
	assert.Equal(t, 1, deleted)
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
}

func TestPlaceOrderIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	req := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2})
	req.IdempotencyKey = "checkout-42"

	first, err := f.manager.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	second, err := f.manager.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(8), f.quantityOf(t, item.ID))
}

func TestPlaceOrderIdempotencyKeyReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 2)

	req := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2})
	req.IdempotencyKey = "checkout-43"
	_, err := f.manager.PlaceOrder(context.Background(), req)
	requireKind(t, err, InsufficientStock)

	req.Lines[0].Quantity = 1
	orderId, err := f.manager.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, orderId)
}

func TestPlaceOrderIdempotencyKeyInFlight(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	locked, err := f.idempotency.TryLock(context.Background(), idempotencyScope, "checkout-44")
	require.NoError(t, err)
	require.True(t, locked)

	req := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2})
	req.IdempotencyKey = "checkout-44"
	_, err = f.manager.PlaceOrder(context.Background(), req)
	orderErr := requireKind(t, err, DuplicateRequest)
	assert.Equal(t, future.Conflict, orderErr.Code)
	assert.Equal(t, int64(10), f.quantityOf(t, item.ID))
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	product := f.createProduct(t, "Linen Shirt", 100, 0, "shirts")
	item := f.createItem(t, product, 10)

	orderId, err := f.manager.PlaceOrder(context.Background(), orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2}))
	require.NoError(t, err)
	require.NoError(t, f.manager.DeleteOrder(context.Background(), orderId))
}

func TestGetOrderResolvesCurrentRecords(t *testing.T) {
	f := newFixture(t)
	product := f.createProduct(t, "Linen Shirt", 100, 10, "shirts")
	item := f.createItem(t, product, 10)
	f.createVoucher(t, "V", 20, "", fixedNow.Add(time.Hour), true)

	req := orderRequest(OrderLineRequest{ItemId: item.ID, Quantity: 2})
	req.Vouchers = []string{"V", "UNKNOWN"}
	req.User = "u-1001"
	req.Description = "leave at the door"
	orderId, err := f.manager.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	_, err = f.store.ItemRepository().Reserve(context.Background(), item.ID, 1)
	require.NoError(t, err)

	view, err := f.manager.GetOrder(context.Background(), orderId)
	require.NoError(t, err)
	assert.Equal(t, orderId, view.ID)
	assert.Equal(t, "u-1001", view.User)
	assert.Equal(t, "leave at the door", view.Description)
	assert.Equal(t, "Nguyen", view.ContactDetail.LastName)
	assert.Equal(t, "140", view.TotalPrice.Amount)
	require.Len(t, view.OrderLines, 1)
	require.NotNil(t, view.OrderLines[0].Item)
	assert.Equal(t, int64(7), view.OrderLines[0].Item.Quantity)
	assert.Equal(t, "Linen Shirt", view.OrderLines[0].CurrentProductName)
	assert.Equal(t, []string{"V", "UNKNOWN"}, view.VoucherCodes)
	require.Len(t, view.AppliedVouchers, 1)
	assert.Equal(t, "V", view.AppliedVouchers[0].Code)
}

func TestPublicVouchers(t *testing.T) {
	f := newFixture(t)
	f.createVoucher(t, "SUMMER", 10, "", fixedNow.Add(48*time.Hour), true)
	f.createVoucher(t, "STAFF", 40, "", fixedNow.Add(48*time.Hour), false)
	f.createVoucher(t, "HATS", 5, "hats", fixedNow.Add(time.Hour), true)

	vouchers, err := f.manager.PublicVouchers(context.Background())
	require.NoError(t, err)
	require.Len(t, vouchers, 2)
	assert.Equal(t, "HATS", vouchers[0].Code)
	assert.Equal(t, "SUMMER", vouchers[1].Code)
}

func TestErrorKinds(t *testing.T) {
	err := errors.Wrap(ErrOrderNotFound("o-1", nil), "outer")
	assert.Equal(t, OrderNotFound, KindOf(err))
	assert.True(t, IsKind(err, OrderNotFound))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))

	assert.Equal(t, "Invalid request body key \"coupon\"", ErrInvalidRequestField("coupon").Message)
	assert.Equal(t, "Missing request body key \"products\"", ErrMissingRequestField("products").Message)
	assert.Equal(t, future.InternalError, ErrTransaction(errors.New("socket closed")).Code)
}
