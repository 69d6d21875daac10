package calculate

import (
	"time"

	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopspring/decimal"
)

type LinePrice struct {
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	FinalUnitPrice  decimal.Decimal
	Quantity        int64
	Total           decimal.Decimal
}

type OrderPrice struct {
	Lines         []LinePrice
	OriginalPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

type Line struct {
	Product  *entities.Product
	Quantity int64
}

// PriceCalculator folds product discounts and applicable vouchers into prices.
// Implementations hold no state between calls; the same inputs always give the
// same result.
type PriceCalculator interface {
	PriceLine(product *entities.Product, vouchers []*entities.Voucher, now time.Time) LinePrice
	PriceOrder(lines []Line, vouchers []*entities.Voucher, now time.Time) OrderPrice
}
