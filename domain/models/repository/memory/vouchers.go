package memory

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	voucher_repository "github.com/shopfront/order-service/domain/models/repository/voucher"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type voucherRepository struct {
	store *Store
}

func (store *Store) VoucherRepository() voucher_repository.IVoucherRepository {
	return voucherRepository{store}
}

func (repo voucherRepository) FindByCode(ctx context.Context, code string) (*entities.Voucher, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find voucher failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	record, ok := repo.store.vouchers[code]
	if !ok {
		return nil, repository.ErrorFactory(repository.NotFoundErr, "voucher not found",
			errors.Wrapf(repository.ErrorNotFound, "code: %s", code))
	}
	voucher := record.Voucher
	return &voucher, nil
}

func (repo voucherRepository) FindByCodes(ctx context.Context, codes []string) ([]*entities.Voucher, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find vouchers failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	seen := make(map[string]struct{}, len(codes))
	vouchers := make([]*entities.Voucher, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		if record, ok := repo.store.vouchers[code]; ok {
			voucher := record.Voucher
			vouchers = append(vouchers, &voucher)
		}
	}

	sort.Slice(vouchers, func(i, j int) bool { return vouchers[i].Code < vouchers[j].Code })
	return vouchers, nil
}

func (repo voucherRepository) FindPublic(ctx context.Context) ([]*entities.Voucher, error) {
	if err := ctx.Err(); err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find public vouchers failed", err)
	}

	repo.store.mutex.RLock()
	defer repo.store.mutex.RUnlock()

	vouchers := make([]*entities.Voucher, 0, len(repo.store.vouchers))
	for _, record := range repo.store.vouchers {
		if record.Public {
			voucher := record.Voucher
			vouchers = append(vouchers, &voucher)
		}
	}

	sort.Slice(vouchers, func(i, j int) bool {
		if vouchers[i].ExpiresIn.Equal(vouchers[j].ExpiresIn) {
			return vouchers[i].Code < vouchers[j].Code
		}
		return vouchers[i].ExpiresIn.Before(vouchers[j].ExpiresIn)
	})
	return vouchers, nil
}

func (repo voucherRepository) Insert(ctx context.Context, voucher *entities.Voucher) error {
	if err := ctx.Err(); err != nil {
		return repository.ErrorFactory(repository.InternalErr, "insert voucher failed", err)
	}

	repo.store.mutex.Lock()
	defer repo.store.mutex.Unlock()

	if _, ok := repo.store.vouchers[voucher.Code]; ok {
		return repository.ErrorFactory(repository.ConflictErr, "voucher already exists",
			errors.Wrapf(repository.ErrorDuplicateKey, "code: %s", voucher.Code))
	}

	if voucher.ID == "" {
		voucher.ID = primitive.NewObjectID().Hex()
	}
	voucher.CreatedAt = repo.store.clock()
	voucher.UpdatedAt = voucher.CreatedAt
	repo.store.vouchers[voucher.Code] = voucherRecord{*voucher}
	code := voucher.Code
	repo.store.journal(ctx, func() { delete(repo.store.vouchers, code) })
	return nil
}
