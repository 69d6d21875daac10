package memory

import (
	"github.com/shopfront/order-service/domain/models/entities"
)

type itemRecord struct {
	entities.Item
}

type productRecord struct {
	entities.Product
}

type voucherRecord struct {
	entities.Voucher
}

type orderRecord struct {
	entities.Order
}

func (record productRecord) clone() *entities.Product {
	product := record.Product
	product.Pictures = append([]string(nil), record.Pictures...)
	product.Available = append([]string(nil), record.Available...)
	return &product
}

func (record orderRecord) clone() *entities.Order {
	order := record.Order
	order.Lines = append([]entities.OrderLine(nil), record.Lines...)
	order.Vouchers = append([]string(nil), record.Vouchers...)
	if record.ShipDate != nil {
		shipDate := *record.ShipDate
		order.ShipDate = &shipDate
	}
	return &order
}
