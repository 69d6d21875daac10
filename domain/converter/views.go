package converter

import (
	"time"

	"github.com/shopfront/order-service/domain/models/entities"
)

// OrderSnapshot is an order together with the records its lines and voucher
// codes refer to, as read at display time.
type OrderSnapshot struct {
	Order    *entities.Order
	Items    map[string]*entities.Item
	Products map[string]*entities.Product
	Vouchers []*entities.Voucher
}

type MoneyView struct {
	Amount   string
	Currency string
}

type ContactDetailView struct {
	FirstName     string
	LastName      string
	Phone         string
	Province      string
	District      string
	AddressDetail string
}

type ItemView struct {
	ID        string
	ProductId string
	Size      entities.Size
	Color     string
	Quantity  int64
}

type OrderLineView struct {
	ItemId          string
	ProductId       string
	ProductName     string
	Quantity        int64
	UnitPrice       MoneyView
	DiscountPercent float64
	FinalUnitPrice  MoneyView

	// current catalog state, empty when the record no longer exists
	CurrentProductName string
	CurrentPrice       float64
	Item               *ItemView
}

type VoucherView struct {
	Code        string
	Description string
	Discount    float64
	Category    string
	Public      bool
	ExpiresIn   time.Time
}

type OrderView struct {
	ID            string
	Status        string
	User          string
	Description   string
	ContactDetail ContactDetailView
	OriginalPrice MoneyView
	TotalPrice    MoneyView
	OrderDate     time.Time
	ShipDate      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	OrderLines      []OrderLineView
	VoucherCodes    []string
	AppliedVouchers []VoucherView
}
