package converter

import (
	"context"

	"github.com/devfeel/mapper"
	"github.com/pkg/errors"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/shopfront/order-service/domain/models/entities"
)

type iConverterImpl struct {
	logger logger.Logger
}

func NewConverter(log logger.Logger) IConverter {
	return &iConverterImpl{log}
}

// Map supports *OrderSnapshot -> OrderView and *entities.Voucher -> VoucherView.
func (iconv iConverterImpl) Map(ctx context.Context, in interface{}, out interface{}) (interface{}, error) {
	switch out.(type) {
	case OrderView:
		snapshot, ok := in.(*OrderSnapshot)
		if !ok || snapshot == nil || snapshot.Order == nil {
			iconv.logger.FromContext(ctx).Error("mapping from input type not supported",
				"fn", "Map",
				"in", in)
			return nil, errors.New("mapping from input type not supported")
		}
		return iconv.toOrderView(snapshot)

	case VoucherView:
		voucher, ok := in.(*entities.Voucher)
		if !ok || voucher == nil {
			iconv.logger.FromContext(ctx).Error("mapping from input type not supported",
				"fn", "Map",
				"in", in)
			return nil, errors.New("mapping from input type not supported")
		}
		return toVoucherView(voucher)

	default:
		iconv.logger.FromContext(ctx).Error("mapping to output type not supported",
			"fn", "Map",
			"out", out)
		return nil, errors.New("mapping to output type not supported")
	}
}

func toVoucherView(voucher *entities.Voucher) (*VoucherView, error) {
	var view VoucherView
	if err := mapper.Mapper(voucher, &view); err != nil {
		return nil, errors.Wrap(err, "mapper voucher failed")
	}
	return &view, nil
}

func (iconv iConverterImpl) toOrderView(snapshot *OrderSnapshot) (*OrderView, error) {
	var view OrderView
	if err := mapper.Mapper(snapshot.Order, &view); err != nil {
		return nil, errors.Wrap(err, "mapper order failed")
	}

	view.OrderLines = make([]OrderLineView, 0, len(snapshot.Order.Lines))
	for i := range snapshot.Order.Lines {
		var lineView OrderLineView
		if err := mapper.Mapper(&snapshot.Order.Lines[i], &lineView); err != nil {
			return nil, errors.Wrap(err, "mapper order line failed")
		}

		if item, ok := snapshot.Items[lineView.ItemId]; ok && item != nil {
			var itemView ItemView
			if err := mapper.Mapper(item, &itemView); err != nil {
				return nil, errors.Wrap(err, "mapper item failed")
			}
			lineView.Item = &itemView
		}

		if product, ok := snapshot.Products[lineView.ProductId]; ok && product != nil {
			lineView.CurrentProductName = product.Name
			lineView.CurrentPrice = product.Price
		}

		view.OrderLines = append(view.OrderLines, lineView)
	}

	view.VoucherCodes = append([]string(nil), snapshot.Order.Vouchers...)
	view.AppliedVouchers = make([]VoucherView, 0, len(snapshot.Vouchers))
	for _, voucher := range snapshot.Vouchers {
		if voucher == nil {
			continue
		}
		voucherView, err := toVoucherView(voucher)
		if err != nil {
			return nil, err
		}
		view.AppliedVouchers = append(view.AppliedVouchers, *voucherView)
	}

	return &view, nil
}
