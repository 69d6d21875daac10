package calculate

import (
	"time"

	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type priceCalculatorImpl struct{}

func New() PriceCalculator {
	return priceCalculatorImpl{}
}

func (calculator priceCalculatorImpl) PriceLine(product *entities.Product, vouchers []*entities.Voucher, now time.Time) LinePrice {
	unitPrice := decimal.NewFromFloat(product.Price)
	discount := decimal.NewFromFloat(product.Discount)

	for _, voucher := range vouchers {
		if voucher == nil || !voucher.IsApplicable(product.Category, now) {
			continue
		}
		discount = discount.Add(decimal.NewFromFloat(voucher.Discount))
	}

	finalPrice := unitPrice.Sub(unitPrice.Mul(discount).Div(hundred))
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	return LinePrice{
		UnitPrice:       unitPrice,
		DiscountPercent: discount,
		FinalUnitPrice:  finalPrice,
		Quantity:        1,
		Total:           finalPrice,
	}
}

func (calculator priceCalculatorImpl) PriceOrder(lines []Line, vouchers []*entities.Voucher, now time.Time) OrderPrice {
	orderPrice := OrderPrice{
		Lines:         make([]LinePrice, 0, len(lines)),
		OriginalPrice: decimal.Zero,
		TotalPrice:    decimal.Zero,
	}

	for _, line := range lines {
		quantity := decimal.NewFromInt(line.Quantity)
		linePrice := calculator.PriceLine(line.Product, vouchers, now)
		linePrice.Quantity = line.Quantity
		linePrice.Total = linePrice.FinalUnitPrice.Mul(quantity)

		orderPrice.OriginalPrice = orderPrice.OriginalPrice.Add(linePrice.UnitPrice.Mul(quantity))
		orderPrice.TotalPrice = orderPrice.TotalPrice.Add(linePrice.Total)
		orderPrice.Lines = append(orderPrice.Lines, linePrice)
	}

	if orderPrice.TotalPrice.IsNegative() {
		orderPrice.TotalPrice = decimal.Zero
	}

	return orderPrice
}
