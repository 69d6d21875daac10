package app

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/configs"
	"github.com/shopfront/order-service/domain"
	"github.com/shopfront/order-service/domain/models/repository"
	item_repository "github.com/shopfront/order-service/domain/models/repository/item"
	"github.com/shopfront/order-service/domain/models/repository/memory"
	order_repository "github.com/shopfront/order-service/domain/models/repository/order"
	product_repository "github.com/shopfront/order-service/domain/models/repository/product"
	voucher_repository "github.com/shopfront/order-service/domain/models/repository/voucher"
	"github.com/shopfront/order-service/domain/states"
	"github.com/shopfront/order-service/infrastructure/cache"
	"github.com/shopfront/order-service/infrastructure/events"
	"github.com/shopfront/order-service/infrastructure/logger"
	"github.com/shopfront/order-service/infrastructure/mongoadapter"
	stock_service "github.com/shopfront/order-service/infrastructure/services/stock"
	"go.uber.org/zap"
)

var Globals struct {
	MongoDriver       *mongoadapter.Mongo
	Config            *configs.Config
	ZapLogger         *zap.Logger
	Logger            logger.Logger
	TxManager         repository.ITransactionManager
	ItemRepository    item_repository.IItemRepository
	ProductRepository product_repository.IProductRepository
	VoucherRepository voucher_repository.IVoucherRepository
	OrderRepository   order_repository.IOrderRepository
	StockService      stock_service.IStockService
	Idempotency       cache.IIdempotencyStore
	Publisher         events.IPublisher
	OrderManager      domain.IOrderManager
}

type index struct {
	collection string
	key        string
	unique     bool
}

var mongoIndexes = []index{
	{"items", "product", false},
	{"products", "name", true},
	{"vouchers", "code", true},
	{"vouchers", "expiresIn", false},
	{"orders", "status", false},
	{"orders", "user", false},
	{"orders", "createdAt", false},
}

func SetupMongoDriver(config configs.Config) (*mongoadapter.Mongo, error) {
	mongoConf := &mongoadapter.MongoConfig{
		Host:            config.Mongo.Host,
		Port:            config.Mongo.Port,
		Username:        config.Mongo.User,
		Password:        config.Mongo.Pass,
		Database:        config.Mongo.Database,
		ConnTimeout:     time.Duration(config.Mongo.ConnectionTimeout) * time.Second,
		ReadTimeout:     time.Duration(config.Mongo.ReadTimeout) * time.Second,
		WriteTimeout:    time.Duration(config.Mongo.WriteTimeout) * time.Second,
		MaxConnIdleTime: time.Duration(config.Mongo.MaxConnIdleTime) * time.Second,
		RetryConnect:    uint64(config.Mongo.RetryConnect),
		MaxPoolSize:     uint64(config.Mongo.MaxPoolSize),
		MinPoolSize:     uint64(config.Mongo.MinPoolSize),
		WriteConcernW:   config.Mongo.WriteConcernW,
		WriteConcernJ:   config.Mongo.WriteConcernJ,
		RetryWrites:     config.Mongo.RetryWrite,
		ReadConcern:     config.Mongo.ReadConcern,
		ReadPreference:  config.Mongo.ReadPreference,
		ConnectUri:      config.Mongo.ConnectUri,
	}

	mongoDriver, err := mongoadapter.NewMongo(mongoConf)
	if err != nil {
		Globals.Logger.Error("mongoadapter.NewMongo failed",
			"fn", "SetupMongoDriver",
			"error", err)
		return nil, errors.Wrap(err, "mongoadapter.NewMongo init failed")
	}

	if err := MongoMigrations(context.Background(), mongoDriver); err != nil {
		return nil, err
	}
	return mongoDriver, nil
}

// MongoMigrations creates the indexes the repositories rely on. Creating an
// existing index is a no-op.
func MongoMigrations(ctx context.Context, mongoDriver *mongoadapter.Mongo) error {
	for _, idx := range mongoIndexes {
		var err error
		if idx.unique {
			_, err = mongoDriver.AddUniqueIndex(ctx, idx.collection, idx.key)
		} else {
			_, err = mongoDriver.AddIndex(ctx, idx.collection, idx.key)
		}

		if err != nil {
			Globals.Logger.Error("create index failed",
				"fn", "MongoMigrations",
				"collection", idx.collection,
				"key", idx.key,
				"error", err)
			return errors.Wrapf(err, "create %s.%s index failed", idx.collection, idx.key)
		}
	}
	return nil
}

// SetupRepositories selects the backing store, mongo unless StoreMockEnabled
// is set.
func SetupRepositories(config configs.Config) error {
	if config.App.StoreMockEnabled {
		store := memory.NewStore()
		Globals.TxManager = store
		Globals.ItemRepository = store.ItemRepository()
		Globals.ProductRepository = store.ProductRepository()
		Globals.VoucherRepository = store.VoucherRepository()
		Globals.OrderRepository = store.OrderRepository()
		Globals.Logger.Warn("in-memory store enabled, data is lost on restart", "fn", "SetupRepositories")
		return nil
	}

	mongoDriver, err := SetupMongoDriver(config)
	if err != nil {
		return err
	}

	Globals.MongoDriver = mongoDriver
	Globals.TxManager = mongoDriver
	Globals.ItemRepository = item_repository.NewItemRepository(mongoDriver)
	Globals.ProductRepository = product_repository.NewProductRepository(mongoDriver)
	Globals.VoucherRepository = voucher_repository.NewVoucherRepository(mongoDriver)
	Globals.OrderRepository = order_repository.NewOrderRepository(mongoDriver)
	return nil
}

// SetupIdempotency uses redis when an address is configured and an in-process
// store otherwise.
func SetupIdempotency(config configs.Config) (cache.IIdempotencyStore, error) {
	ttl := time.Duration(config.Redis.IdempotencyTTL) * time.Second
	if config.Redis.Address == "" {
		return cache.NewMemoryIdempotencyStore(ttl), nil
	}

	rdb := cache.NewRedisClient(config.Redis.Address, config.Redis.Password, config.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		Globals.Logger.Error("redis ping failed", "fn", "SetupIdempotency",
			"address", config.Redis.Address, "error", err)
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return cache.NewRedisIdempotencyStore(rdb, ttl), nil
}

func SetupPublisher(config configs.Config) events.IPublisher {
	if strings.TrimSpace(config.Kafka.Brokers) == "" {
		return events.NewNoopPublisher()
	}
	return events.NewKafkaProducer(config.Kafka.Brokers, config.Kafka.EventsTopic, Globals.Logger)
}

// SetupOrderManager wires the manager from the collaborators already in Globals.
func SetupOrderManager(config configs.Config) domain.IOrderManager {
	concurrency := config.App.ReserveConcurrency
	if Globals.MongoDriver != nil && concurrency > 1 {
		// a mongo session runs one operation at a time
		Globals.Logger.Warn("reserve concurrency limited to 1 on mongo", "fn", "SetupOrderManager",
			"configured", concurrency)
		concurrency = 1
	}

	Globals.StockService = stock_service.NewStockService(Globals.ItemRepository, concurrency, Globals.Logger)
	return domain.NewOrderManager(domain.Dependencies{
		TxManager:         Globals.TxManager,
		ItemRepository:    Globals.ItemRepository,
		ProductRepository: Globals.ProductRepository,
		VoucherRepository: Globals.VoucherRepository,
		OrderRepository:   Globals.OrderRepository,
		StockService:      Globals.StockService,
		Policy:            states.NewTransitionPolicy(config.App.StrictTransitions),
		Idempotency:       Globals.Idempotency,
		Publisher:         Globals.Publisher,
		Logger:            Globals.Logger,
		Currency:          config.App.Currency,
	})
}
