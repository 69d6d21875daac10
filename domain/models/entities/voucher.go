package entities

import (
	"time"
)

type Voucher struct {
	ID          string    `bson:"_id"`
	Code        string    `bson:"code"`
	Description string    `bson:"description"`
	Public      bool      `bson:"public"`
	Discount    float64   `bson:"discount"`
	Category    string    `bson:"category,omitempty"`
	ExpiresIn   time.Time `bson:"expiresIn"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

// IsApplicable reports whether the voucher counts towards a product of the
// given category at time now.
func (voucher Voucher) IsApplicable(category string, now time.Time) bool {
	if !voucher.ExpiresIn.After(now) {
		return false
	}
	return voucher.Category == "" || voucher.Category == category
}
