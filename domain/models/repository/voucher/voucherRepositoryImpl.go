package voucher_repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/domain/models/repository"
	"github.com/shopfront/order-service/infrastructure/mongoadapter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName string = "vouchers"
)

type iVoucherRepositoryImpl struct {
	mongoAdapter *mongoadapter.Mongo
}

func NewVoucherRepository(mongoDriver *mongoadapter.Mongo) IVoucherRepository {
	return &iVoucherRepositoryImpl{mongoDriver}
}

func (repo iVoucherRepositoryImpl) FindByCode(ctx context.Context, code string) (*entities.Voucher, error) {
	var voucher entities.Voucher
	err := repo.mongoAdapter.FindOne(ctx, collectionName, bson.D{{"code", code}}, &voucher)
	if err != nil {
		if repo.mongoAdapter.NoDocument(err) {
			return nil, repository.ErrorFactory(repository.NotFoundErr, "voucher not found",
				errors.Wrapf(repository.ErrorNotFound, "code: %s", code))
		}
		return nil, repository.ErrorFactory(repository.InternalErr, "find voucher failed",
			errors.Wrap(err, "FindOne vouchers failed"))
	}
	return &voucher, nil
}

func (repo iVoucherRepositoryImpl) FindByCodes(ctx context.Context, codes []string) ([]*entities.Voucher, error) {
	vouchers := make([]*entities.Voucher, 0, len(codes))
	if len(codes) == 0 {
		return vouchers, nil
	}

	err := repo.mongoAdapter.FindMany(ctx, collectionName,
		bson.D{{"code", bson.D{{"$in", codes}}}}, &vouchers,
		options.Find().SetSort(bson.D{{"code", 1}}))
	if err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find vouchers failed",
			errors.Wrap(err, "Find vouchers failed"))
	}
	return vouchers, nil
}

func (repo iVoucherRepositoryImpl) FindPublic(ctx context.Context) ([]*entities.Voucher, error) {
	vouchers := make([]*entities.Voucher, 0, 16)
	err := repo.mongoAdapter.FindMany(ctx, collectionName,
		bson.D{{"public", true}}, &vouchers,
		options.Find().SetSort(bson.D{{"expiresIn", 1}}))
	if err != nil {
		return nil, repository.ErrorFactory(repository.InternalErr, "find public vouchers failed",
			errors.Wrap(err, "Find vouchers failed"))
	}
	return vouchers, nil
}

func (repo iVoucherRepositoryImpl) Insert(ctx context.Context, voucher *entities.Voucher) error {
	if voucher.ID == "" {
		voucher.ID = primitive.NewObjectID().Hex()
	}
	voucher.CreatedAt = time.Now().UTC()
	voucher.UpdatedAt = voucher.CreatedAt

	if _, err := repo.mongoAdapter.InsertOne(ctx, collectionName, voucher); err != nil {
		if repo.mongoAdapter.IsDupError(err) {
			return repository.ErrorFactory(repository.ConflictErr, "voucher already exists",
				errors.Wrapf(repository.ErrorDuplicateKey, "code: %s", voucher.Code))
		}
		return repository.ErrorFactory(repository.InternalErr, "insert voucher failed",
			errors.Wrap(err, "InsertOne vouchers failed"))
	}
	return nil
}
