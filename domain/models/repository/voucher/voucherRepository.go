package voucher_repository

import (
	"context"

	"github.com/shopfront/order-service/domain/models/entities"
)

type IVoucherRepository interface {
	FindByCode(ctx context.Context, code string) (*entities.Voucher, error)

	// FindByCodes returns the vouchers matching codes; unknown codes are skipped.
	FindByCodes(ctx context.Context, codes []string) ([]*entities.Voucher, error)

	FindPublic(ctx context.Context) ([]*entities.Voucher, error)

	Insert(ctx context.Context, voucher *entities.Voucher) error
}
