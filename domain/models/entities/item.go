package entities

import (
	"time"
)

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var sizes = map[Size]struct{}{
	SizeXS: {}, SizeS: {}, SizeM: {}, SizeL: {}, SizeXL: {}, SizeXXL: {},
}

func (size Size) Valid() bool {
	_, ok := sizes[size]
	return ok
}

// Item is a size/color variant of a product that carries its own stock.
type Item struct {
	ID        string    `bson:"_id"`
	ProductId string    `bson:"product"`
	Size      Size      `bson:"size"`
	Color     string    `bson:"color,omitempty"`
	Quantity  int64     `bson:"quantity"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
