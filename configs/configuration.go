package configs

import (
	"flag"
	"os"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	App struct {
		LogLevel           string `env:"ORDER_SERVICE_LOG_LEVEL,default=debug"`
		Currency           string `env:"ORDER_SERVICE_CURRENCY,default=VND"`
		StrictTransitions  bool   `env:"ORDER_SERVICE_STRICT_TRANSITIONS,default=false"`
		ReserveConcurrency int    `env:"ORDER_SERVICE_RESERVE_CONCURRENCY,default=1"`
		StoreMockEnabled   bool   `env:"ORDER_SERVICE_STORE_MOCK_ENABLED,default=false"`
	}

	GRPCServer struct {
		Address string `env:"ORDER_SERVER_ADDRESS,default=0.0.0.0"`
		Port    int    `env:"ORDER_SERVER_PORT,default=9090"`
	}

	Metrics struct {
		Address string `env:"ORDER_METRICS_ADDRESS,default=0.0.0.0"`
		Port    int    `env:"ORDER_METRICS_PORT,default=9100"`
	}

	Mongo struct {
		User              string `env:"ORDER_SERVICE_MONGO_USER"`
		Pass              string `env:"ORDER_SERVICE_MONGO_PASS"`
		Host              string `env:"ORDER_SERVICE_MONGO_HOST"`
		Port              int    `env:"ORDER_SERVICE_MONGO_PORT"`
		ConnectUri        string `env:"ORDER_SERVICE_MONGO_URI"`
		Database          string `env:"ORDER_SERVICE_MONGO_DB_NAME,default=orderService"`
		ConnectionTimeout int    `env:"ORDER_SERVICE_MONGO_CONN_TIMEOUT,default=10"`
		ReadTimeout       int    `env:"ORDER_SERVICE_MONGO_READ_TIMEOUT,default=5"`
		WriteTimeout      int    `env:"ORDER_SERVICE_MONGO_WRITE_TIMEOUT,default=5"`
		MaxConnIdleTime   int    `env:"ORDER_SERVICE_MONGO_MAX_CONN_IDLE_TIME"`
		MaxPoolSize       int    `env:"ORDER_SERVICE_MONGO_MAX_POOL_SIZE"`
		MinPoolSize       int    `env:"ORDER_SERVICE_MONGO_MIN_POOL_SIZE"`
		WriteConcernW     string `env:"ORDER_SERVICE_MONGO_WRITE_CONCERN_W,default=majority"`
		WriteConcernJ     string `env:"ORDER_SERVICE_MONGO_WRITE_CONCERN_J"`
		RetryConnect      int    `env:"ORDER_SERVICE_MONGO_RETRY_CONNECT,default=3"`
		RetryWrite        bool   `env:"ORDER_SERVICE_MONGO_RETRY_WRITE,default=true"`
		ReadConcern       string `env:"ORDER_SERVICE_MONGO_READ_CONCERN,default=majority"`
		ReadPreference    string `env:"ORDER_SERVICE_MONGO_READ_PREFERENCE,default=primary"`
	}

	Redis struct {
		Address        string `env:"ORDER_SERVICE_REDIS_ADDRESS"`
		Password       string `env:"ORDER_SERVICE_REDIS_PASSWORD"`
		DB             int    `env:"ORDER_SERVICE_REDIS_DB"`
		IdempotencyTTL int    `env:"ORDER_SERVICE_REDIS_IDEMPOTENCY_TTL,default=86400"`
	}

	Kafka struct {
		Brokers     string `env:"ORDER_SERVICE_KAFKA_BROKERS"`
		EventsTopic string `env:"ORDER_SERVICE_KAFKA_EVENTS_TOPIC,default=order-events"`
	}
}

func LoadConfig(path string) (*Config, error) {
	var config = &Config{}

	if os.Getenv("APP_ENV") == "dev" {
		if path != "" {
			if err := godotenv.Load(path); err != nil {
				return nil, errors.Wrapf(err, "load env file failed, path: %s", path)
			}
		} else if flag.Lookup("test.v") != nil {
			// test mode
			if err := godotenv.Load("../testdata/.env"); err != nil {
				return nil, errors.Wrap(err, "load testdata env file failed")
			}
		} else {
			if err := godotenv.Load("./.env"); err != nil {
				return nil, errors.Wrap(err, "load .env file failed")
			}
		}
	}

	if _, err := env.UnmarshalFromEnviron(config); err != nil {
		return nil, errors.Wrap(err, "env.UnmarshalFromEnviron failed")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (config Config) Validate() error {
	if config.GRPCServer.Port <= 0 {
		return errors.New("ORDER_SERVER_PORT required")
	}

	if config.App.ReserveConcurrency <= 0 {
		return errors.New("ORDER_SERVICE_RESERVE_CONCURRENCY must be a positive integer")
	}

	if config.App.StoreMockEnabled {
		return nil
	}

	if config.Mongo.ConnectUri == "" && (config.Mongo.Host == "" || config.Mongo.Port == 0) {
		return errors.New("ORDER_SERVICE_MONGO_URI or ORDER_SERVICE_MONGO_HOST/ORDER_SERVICE_MONGO_PORT required")
	}

	if config.Mongo.Database == "" {
		return errors.New("ORDER_SERVICE_MONGO_DB_NAME required")
	}
	return nil
}
