package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocumentVersion string = "1.0.0"
)

type Order struct {
	ID            string        `bson:"_id"`
	DocVersion    string        `bson:"docVersion"`
	Lines         []OrderLine   `bson:"lines"`
	User          string        `bson:"user,omitempty"`
	ContactDetail ContactDetail `bson:"contactDetail"`
	Vouchers      []string      `bson:"vouchers"`
	Description   string        `bson:"description,omitempty"`
	OriginalPrice Money         `bson:"originalPrice"`
	TotalPrice    Money         `bson:"totalPrice"`
	Status        string        `bson:"status"`
	OrderDate     time.Time     `bson:"orderDate"`
	ShipDate      *time.Time    `bson:"shipDate"`
	CreatedAt     time.Time     `bson:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt"`
}

// OrderLine keeps a price snapshot of the line at placement time.
type OrderLine struct {
	ItemId          string  `bson:"item"`
	ProductId       string  `bson:"product"`
	ProductName     string  `bson:"productName"`
	Quantity        int64   `bson:"quantity"`
	UnitPrice       Money   `bson:"unitPrice"`
	DiscountPercent float64 `bson:"discountPercent"`
	FinalUnitPrice  Money   `bson:"finalUnitPrice"`
}

type ContactDetail struct {
	FirstName     string `bson:"firstName"`
	LastName      string `bson:"lastName"`
	Phone         string `bson:"phone"`
	Province      string `bson:"province"`
	District      string `bson:"district,omitempty"`
	AddressDetail string `bson:"addressDetail"`
}

type Money struct {
	Amount   string `bson:"amount"`
	Currency string `bson:"cur"`
}

func GenerateOrderId() string {
	return uuid.New().String()
}
