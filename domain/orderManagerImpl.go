package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/converter"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	item_repository "github.com/shopfront/order-service/domain/models/repository/item"
	order_repository "github.com/shopfront/order-service/domain/models/repository/order"
	product_repository "github.com/shopfront/order-service/domain/models/repository/product"
	voucher_repository "github.com/shopfront/order-service/domain/models/repository/voucher"
	"github.com/shopfront/order-service/domain/states"
	"github.com/shopfront/order-service/infrastructure/cache"
	"github.com/shopfront/order-service/infrastructure/events"
	"github.com/shopfront/order-service/infrastructure/future"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/shopfront/order-service/infrastructure/metrics"
	stock_service "github.com/shopfront/order-service/infrastructure/services/stock"
	"github.com/shopfront/order-service/infrastructure/utils/calculate"
)

const (
	idempotencyScope string = "place-order"
)

type Dependencies struct {
	TxManager         repository.ITransactionManager
	ItemRepository    item_repository.IItemRepository
	ProductRepository product_repository.IProductRepository
	VoucherRepository voucher_repository.IVoucherRepository
	OrderRepository   order_repository.IOrderRepository
	StockService      stock_service.IStockService
	Calculator        calculate.PriceCalculator
	Converter         converter.IConverter
	Policy            states.ITransitionPolicy
	Idempotency       cache.IIdempotencyStore
	Publisher         events.IPublisher
	Logger            logger.Logger
	Currency          string
	Clock             func() time.Time
}

type iOrderManagerImpl struct {
	Dependencies
}

type resolvedLine struct {
	item     *entities.Item
	product  *entities.Product
	quantity int64
}

func NewOrderManager(deps Dependencies) IOrderManager {
	if deps.Calculator == nil {
		deps.Calculator = calculate.New()
	}
	if deps.Converter == nil {
		deps.Converter = converter.NewConverter(deps.Logger)
	}
	if deps.Policy == nil {
		deps.Policy = states.NewTransitionPolicy(false)
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewNoopPublisher()
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &iOrderManagerImpl{deps}
}

func (manager *iOrderManagerImpl) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (orderId string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOrder("place", resultOf(err), start) }()

	if err := validatePlaceOrder(req); err != nil {
		return "", err
	}

	if req.IdempotencyKey != "" && manager.Idempotency != nil {
		previousId, done, claimErr := manager.claimIdempotencyKey(ctx, req.IdempotencyKey)
		if claimErr != nil {
			return "", claimErr
		}
		if previousId != "" {
			return previousId, nil
		}
		if done != nil {
			defer func() { done(err == nil, orderId) }()
		}
	}

	newOrderId := entities.GenerateOrderId()
	var order *entities.Order
	txErr := manager.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = manager.placeInTransaction(ctx, newOrderId, req)
		return err
	})

	if txErr != nil {
		orderErr := manager.classify(txErr)
		manager.Logger.FromContext(ctx).Error("place order failed",
			"fn", "PlaceOrder",
			"orderId", newOrderId,
			"kind", orderErr.Kind,
			"error", txErr)
		return "", orderErr
	}

	manager.Logger.FromContext(ctx).Info("order placed",
		"fn", "PlaceOrder",
		"orderId", order.ID,
		"totalPrice", order.TotalPrice.Amount,
		"lines", len(order.Lines))

	manager.publish(ctx, events.OrderEvent{
		Type:        events.OrderPlaced,
		OrderID:     order.ID,
		UserID:      order.User,
		Status:      order.Status,
		TotalAmount: order.TotalPrice.Amount,
		Currency:    order.TotalPrice.Currency,
		Items:       eventItems(order),
	})

	return order.ID, nil
}

// claimIdempotencyKey returns the id of an order already placed with key, or a
// callback to run once the placement finished. Store failures only disable
// de-duplication for this request.
func (manager *iOrderManagerImpl) claimIdempotencyKey(ctx context.Context, key string) (string, func(bool, string), error) {
	log := manager.Logger.FromContext(ctx)

	previousId, found, err := manager.Idempotency.Recall(ctx, idempotencyScope, key)
	if err != nil {
		log.Warn("idempotency recall failed", "fn", "PlaceOrder", "key", key, "error", err)
		return "", nil, nil
	}
	if found {
		log.Info("duplicate place order request served from idempotency store",
			"fn", "PlaceOrder",
			"key", key,
			"orderId", previousId)
		return previousId, nil, nil
	}

	locked, err := manager.Idempotency.TryLock(ctx, idempotencyScope, key)
	if err != nil {
		log.Warn("idempotency lock failed", "fn", "PlaceOrder", "key", key, "error", err)
		return "", nil, nil
	}
	if !locked {
		return "", nil, ErrDuplicateRequest(key)
	}

	return "", func(success bool, orderId string) {
		if success {
			if err := manager.Idempotency.Remember(ctx, idempotencyScope, key, orderId); err != nil {
				log.Warn("idempotency remember failed", "fn", "PlaceOrder", "key", key, "orderId", orderId, "error", err)
			}
			return
		}
		if err := manager.Idempotency.Forget(ctx, idempotencyScope, key); err != nil {
			log.Warn("idempotency forget failed", "fn", "PlaceOrder", "key", key, "error", err)
		}
	}, nil
}

func (manager *iOrderManagerImpl) placeInTransaction(ctx context.Context, orderId string, req PlaceOrderRequest) (*entities.Order, error) {
	lines := make([]resolvedLine, 0, len(req.Lines))
	for _, lineReq := range req.Lines {
		item, err := manager.ItemRepository.FindById(ctx, lineReq.ItemId)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrItemNotFound(lineReq.ItemId, err)
			}
			return nil, err
		}

		if lineReq.ProductId != "" && lineReq.ProductId != item.ProductId {
			return nil, ErrItemNotFound(lineReq.ItemId,
				errors.Errorf("item %s does not belong to product %s", item.ID, lineReq.ProductId))
		}

		product, err := manager.ProductRepository.FindById(ctx, item.ProductId)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrProductNotFound(item.ProductId, err)
			}
			return nil, err
		}

		lines = append(lines, resolvedLine{item: item, product: product, quantity: lineReq.Quantity})
	}

	requests := make([]stock_service.RequestStock, 0, len(lines))
	for _, line := range lines {
		requests = append(requests, stock_service.RequestStock{ItemId: line.item.ID, Quantity: line.quantity})
	}

	futureData := manager.StockService.BatchReserve(ctx, requests).Get()
	if futureData == nil {
		return nil, errors.New("stock reserve future closed without data")
	}
	if futureData.Error() != nil {
		return nil, reserveError(lines, futureData)
	}

	vouchers, err := manager.VoucherRepository.FindByCodes(ctx, req.Vouchers)
	if err != nil {
		return nil, err
	}

	now := manager.Clock()
	priceLines := make([]calculate.Line, 0, len(lines))
	for _, line := range lines {
		priceLines = append(priceLines, calculate.Line{Product: line.product, Quantity: line.quantity})
	}
	price := manager.Calculator.PriceOrder(priceLines, vouchers, now)

	order := &entities.Order{
		ID:            orderId,
		Lines:         make([]entities.OrderLine, 0, len(lines)),
		User:          req.User,
		ContactDetail: req.ContactDetail,
		Vouchers:      append([]string{}, req.Vouchers...),
		Description:   req.Description,
		OriginalPrice: entities.Money{Amount: price.OriginalPrice.String(), Currency: manager.Currency},
		TotalPrice:    entities.Money{Amount: price.TotalPrice.String(), Currency: manager.Currency},
		Status:        string(states.OrderPlacedStatus),
		OrderDate:     now,
	}

	for i, line := range lines {
		linePrice := price.Lines[i]
		discount, _ := linePrice.DiscountPercent.Float64()
		order.Lines = append(order.Lines, entities.OrderLine{
			ItemId:          line.item.ID,
			ProductId:       line.product.ID,
			ProductName:     line.product.Name,
			Quantity:        line.quantity,
			UnitPrice:       entities.Money{Amount: linePrice.UnitPrice.String(), Currency: manager.Currency},
			DiscountPercent: discount,
			FinalUnitPrice:  entities.Money{Amount: linePrice.FinalUnitPrice.String(), Currency: manager.Currency},
		})
	}

	if err := manager.OrderRepository.Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// reserveError names the first line, in request order, whose reservation failed.
func reserveError(lines []resolvedLine, futureData future.IDataFuture) error {
	futureError := futureData.Error()
	responses, _ := futureData.Data().([]stock_service.ResponseStock)

	failed := -1
	for i, response := range responses {
		if !response.Result {
			failed = i
			break
		}
	}

	if failed < 0 || failed >= len(lines) {
		return futureError.Reason()
	}

	switch futureError.Code() {
	case future.ValidationError:
		return ErrInsufficientStock(lines[failed].product.Name, futureError.Reason())
	case future.NotFound:
		return ErrItemNotFound(lines[failed].item.ID, futureError.Reason())
	default:
		return futureError.Reason()
	}
}

func (manager *iOrderManagerImpl) UpdateStatus(ctx context.Context, orderId, status string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOrder("update_status", resultOf(err), start) }()

	target, ok := states.FromString(status)
	if !ok {
		return ErrInvalidStatus(status)
	}

	var previous string
	var restocked bool
	var order *entities.Order
	txErr := manager.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		restocked = false
		current, err := manager.OrderRepository.FindById(ctx, orderId)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrOrderNotFound(orderId, err)
			}
			return err
		}

		previous = current.Status
		from := states.OrderStatus(current.Status)
		if err := manager.Policy.Check(from, target); err != nil {
			return ErrIllegalTransition(current.Status, target.String(), err)
		}

		if target == states.OrderCancelledStatus && from.HoldsStock() {
			if err := manager.restock(ctx, current); err != nil {
				return err
			}
			restocked = true
		}

		var shipDate *time.Time
		if target == states.OrderDoneStatus {
			now := manager.Clock()
			shipDate = &now
		}

		order, err = manager.OrderRepository.UpdateStatus(ctx, orderId, target.String(), shipDate)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrOrderNotFound(orderId, err)
			}
			return err
		}
		return nil
	})

	if txErr != nil {
		orderErr := manager.classify(txErr)
		manager.Logger.FromContext(ctx).Error("update order status failed",
			"fn", "UpdateStatus",
			"orderId", orderId,
			"status", status,
			"kind", orderErr.Kind,
			"error", txErr)
		return orderErr
	}

	manager.Logger.FromContext(ctx).Info("order status updated",
		"fn", "UpdateStatus",
		"orderId", orderId,
		"from", previous,
		"to", target,
		"restocked", restocked)

	manager.publish(ctx, events.OrderEvent{
		Type:       events.OrderStatusChanged,
		OrderID:    orderId,
		UserID:     order.User,
		Status:     order.Status,
		PrevStatus: previous,
		Restocked:  restocked,
	})
	return nil
}

func (manager *iOrderManagerImpl) CancelOrder(ctx context.Context, orderId string) error {
	return manager.UpdateStatus(ctx, orderId, string(states.OrderCancelledStatus))
}

func (manager *iOrderManagerImpl) DeleteOrder(ctx context.Context, orderId string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOrder("delete", resultOf(err), start) }()

	var order *entities.Order
	var restocked bool
	txErr := manager.TxManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		restocked = false
		order, err = manager.OrderRepository.FindById(ctx, orderId)
		if err != nil {
			if repository.IsNotFound(err) {
				return ErrOrderNotFound(orderId, err)
			}
			return err
		}

		if states.OrderStatus(order.Status).HoldsStock() {
			if err := manager.restock(ctx, order); err != nil {
				return err
			}
			restocked = true
		}

		// a concurrent delete that got here first makes this fail and rolls the restock back
		if err := manager.OrderRepository.RemoveById(ctx, orderId); err != nil {
			if repository.IsNotFound(err) {
				return ErrOrderNotFound(orderId, err)
			}
			return err
		}
		return nil
	})

	if txErr != nil {
		orderErr := manager.classify(txErr)
		manager.Logger.FromContext(ctx).Error("delete order failed",
			"fn", "DeleteOrder",
			"orderId", orderId,
			"kind", orderErr.Kind,
			"error", txErr)
		return orderErr
	}

	manager.Logger.FromContext(ctx).Info("order deleted",
		"fn", "DeleteOrder",
		"orderId", orderId,
		"status", order.Status,
		"restocked", restocked)

	manager.publish(ctx, events.OrderEvent{
		Type:      events.OrderDeleted,
		OrderID:   orderId,
		UserID:    order.User,
		Status:    order.Status,
		Items:     eventItems(order),
		Restocked: restocked,
	})
	return nil
}

func (manager *iOrderManagerImpl) restock(ctx context.Context, order *entities.Order) error {
	requests := make([]stock_service.RequestStock, 0, len(order.Lines))
	for _, line := range order.Lines {
		requests = append(requests, stock_service.RequestStock{ItemId: line.ItemId, Quantity: line.Quantity})
	}

	futureData := manager.StockService.BatchRelease(ctx, requests).Get()
	if futureData == nil {
		return errors.New("stock release future closed without data")
	}

	if futureError := futureData.Error(); futureError != nil {
		if futureError.Code() == future.NotFound {
			responses, _ := futureData.Data().([]stock_service.ResponseStock)
			for _, response := range responses {
				if !response.Result {
					return ErrItemNotFound(response.ItemId, futureError.Reason())
				}
			}
		}
		return futureError.Reason()
	}
	return nil
}

func (manager *iOrderManagerImpl) GetOrder(ctx context.Context, orderId string) (*converter.OrderView, error) {
	order, err := manager.OrderRepository.FindById(ctx, orderId)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrOrderNotFound(orderId, err)
		}
		return nil, manager.classify(err)
	}

	snapshot := &converter.OrderSnapshot{
		Order:    order,
		Items:    make(map[string]*entities.Item, len(order.Lines)),
		Products: make(map[string]*entities.Product, len(order.Lines)),
	}

	for _, line := range order.Lines {
		if _, ok := snapshot.Items[line.ItemId]; !ok {
			item, err := manager.ItemRepository.FindById(ctx, line.ItemId)
			if err != nil && !repository.IsNotFound(err) {
				return nil, manager.classify(err)
			}
			snapshot.Items[line.ItemId] = item
		}

		if _, ok := snapshot.Products[line.ProductId]; !ok {
			product, err := manager.ProductRepository.FindById(ctx, line.ProductId)
			if err != nil && !repository.IsNotFound(err) {
				return nil, manager.classify(err)
			}
			snapshot.Products[line.ProductId] = product
		}
	}

	snapshot.Vouchers, err = manager.VoucherRepository.FindByCodes(ctx, order.Vouchers)
	if err != nil {
		return nil, manager.classify(err)
	}

	out, err := manager.Converter.Map(ctx, snapshot, converter.OrderView{})
	if err != nil {
		return nil, manager.classify(err)
	}
	return out.(*converter.OrderView), nil
}

func (manager *iOrderManagerImpl) PublicVouchers(ctx context.Context) ([]converter.VoucherView, error) {
	vouchers, err := manager.VoucherRepository.FindPublic(ctx)
	if err != nil {
		return nil, manager.classify(err)
	}

	views := make([]converter.VoucherView, 0, len(vouchers))
	for _, voucher := range vouchers {
		out, err := manager.Converter.Map(ctx, voucher, converter.VoucherView{})
		if err != nil {
			return nil, manager.classify(err)
		}
		views = append(views, *out.(*converter.VoucherView))
	}
	return views, nil
}

// classify keeps business errors as they are and hides every other failure
// behind a Transaction error.
func (manager *iOrderManagerImpl) classify(err error) *OrderError {
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		return orderErr
	}
	return ErrTransaction(err)
}

func (manager *iOrderManagerImpl) publish(ctx context.Context, event events.OrderEvent) {
	event.EventID = uuid.New().String()
	event.Timestamp = manager.Clock()
	event.RequestID = logger.RequestId(ctx)

	if err := manager.Publisher.Publish(ctx, event); err != nil {
		manager.Logger.FromContext(ctx).Warn("publish order event failed",
			"fn", "publish",
			"type", event.Type,
			"orderId", event.OrderID,
			"error", err)
	}
}

func eventItems(order *entities.Order) []events.OrderItem {
	items := make([]events.OrderItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, events.OrderItem{
			ItemID:      line.ItemId,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		})
	}
	return items
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	if len(req.Lines) == 0 {
		return ErrValidation("order must contain at least one line")
	}

	for i, line := range req.Lines {
		if strings.TrimSpace(line.ItemId) == "" {
			return ErrValidation(errors.Errorf("line %d: item is required", i).Error())
		}
		if line.Quantity <= 0 {
			return ErrValidation(errors.Errorf("line %d: quantity must be greater than zero", i).Error())
		}
	}

	contact := req.ContactDetail
	required := []struct {
		name  string
		value string
	}{
		{"firstName", contact.FirstName},
		{"lastName", contact.LastName},
		{"phone", contact.Phone},
		{"province", contact.Province},
		{"addressDetail", contact.AddressDetail},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return ErrValidation("contactDetail." + field.name + " is required")
		}
	}
	return nil
}

func resultOf(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}

	switch KindOf(err) {
	case InsufficientStock:
		return metrics.ResultInsufficient
	case OrderNotFound, ItemNotFound, ProductNotFound:
		return metrics.ResultNotFound
	case Transaction, "":
		return metrics.ResultError
	default:
		return metrics.ResultRejected
	}
}
