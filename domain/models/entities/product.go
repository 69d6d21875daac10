package entities

import (
	"time"
)

type Product struct {
	ID          string     `bson:"_id"`
	Name        string     `bson:"name"`
	Code        string     `bson:"code"`
	Description string     `bson:"description"`
	Price       float64    `bson:"price"`
	Discount    float64    `bson:"discount"`
	Category    string     `bson:"category"`
	Pictures    []string   `bson:"pictures"`
	Available   []string   `bson:"available"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
	DeletedAt   *time.Time `bson:"deletedAt"`
}

// ActualPrice is the price after the product's own discount, floored at zero.
func (product Product) ActualPrice() float64 {
	price := product.Price - product.Price*product.Discount/100
	if price < 0 {
		return 0
	}
	return price
}
