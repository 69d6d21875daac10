package mongoadapter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type MongoConfig struct {
	Host                   string
	Port                   int
	Username               string
	Password               string
	Database               string
	ConnTimeout            time.Duration
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	MaxConnIdleTime        time.Duration
	HeartbeatInterval      time.Duration
	ServerSelectionTimeout time.Duration
	RetryConnect           uint64
	MaxPoolSize            uint64
	MinPoolSize            uint64
	WriteConcernW          string
	WriteConcernJ          string
	RetryWrites            bool
	ReadConcern            string
	ReadPreference         string
	ConnectUri             string
}

type Mongo struct {
	conn         *mongo.Client
	database     string
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewMongo returns an instance of Mongo with an established connection. It uses Ping()
// to ensure the healthiness of the connection, in case Ping() returns error the method
// retries up to RetryConnect times before giving up.
// To connect to a replicaSet use Config.ConnectUri and ignore Host, Port, Username and Password.
func NewMongo(config *MongoConfig) (*Mongo, error) {
	if config.ConnectUri == "" && config.Port == 0 {
		return nil, errors.New("invalid port, port must be a non-zero integer")
	}

	if config.Database == "" {
		return nil, errors.New("database name required")
	}

	var auth string
	if config.ConnectUri == "" && (config.Username != "" && config.Password != "") {
		auth = fmt.Sprintf("%v:%v@", config.Username, config.Password)
	}

	var mongoUri = fmt.Sprintf("mongodb://%v%v:%v", auth, config.Host, config.Port)
	if config.ConnectUri != "" {
		mongoUri = config.ConnectUri
	}

	clientOptions, err := clientOptionsOf(config, mongoUri)
	if err != nil {
		return nil, err
	}

	if config.RetryConnect == 0 {
		config.RetryConnect = 1
	}

	var client *mongo.Client
	var retryErr error
	for i := 1; i <= int(config.RetryConnect); i++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.ConnTimeout)
		client, retryErr = mongo.Connect(ctx, clientOptions)
		if retryErr == nil {
			retryErr = client.Ping(ctx, readpref.Primary())
		}
		cancel()

		if retryErr == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}

	if retryErr != nil {
		return nil, errors.Wrap(retryErr, "MongoDB connection failed")
	}

	if config.ReadTimeout == 0 {
		config.ReadTimeout = 5 * time.Second
	}

	if config.WriteTimeout == 0 {
		config.WriteTimeout = 5 * time.Second
	}

	return &Mongo{
		conn:         client,
		database:     config.Database,
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
	}, nil
}

func clientOptionsOf(config *MongoConfig, mongoUri string) (*options.ClientOptions, error) {
	clientOptions := options.Client().ApplyURI(mongoUri)

	if config.ConnTimeout > 0 {
		clientOptions.SetConnectTimeout(config.ConnTimeout)
	}

	if config.MaxConnIdleTime > 0 {
		clientOptions.SetMaxConnIdleTime(config.MaxConnIdleTime)
	}

	if config.MaxPoolSize > 0 {
		clientOptions.SetMaxPoolSize(config.MaxPoolSize)
	}

	if config.MinPoolSize > 0 {
		clientOptions.SetMinPoolSize(config.MinPoolSize)
	}

	clientOptions.SetRetryWrites(config.RetryWrites)

	if config.HeartbeatInterval > 0 {
		clientOptions.SetHeartbeatInterval(config.HeartbeatInterval)
	}

	if config.ServerSelectionTimeout > 0 {
		clientOptions.SetServerSelectionTimeout(config.ServerSelectionTimeout)
	}

	if config.WriteConcernW != "" || config.WriteConcernJ != "" {
		wc := &writeconcern.WriteConcern{}
		if config.WriteConcernW != "" {
			if config.WriteConcernW == "majority" {
				wc.W = "majority"
			} else {
				w, err := strconv.Atoi(config.WriteConcernW)
				if err != nil {
					return nil, errors.Wrap(err, "WriteConcernW config invalid")
				}
				wc.W = w
			}
		}

		if config.WriteConcernJ != "" {
			j, err := strconv.ParseBool(config.WriteConcernJ)
			if err != nil {
				return nil, errors.Wrap(err, "WriteConcernJ config invalid")
			}
			wc.Journal = &j
		}

		wc.WTimeout = config.WriteTimeout
		clientOptions.SetWriteConcern(wc)
	}

	if config.ReadConcern != "" {
		var rc *readconcern.ReadConcern
		switch config.ReadConcern {
		case "majority":
			rc = readconcern.Majority()
		case "available":
			rc = readconcern.Available()
		case "linearizable":
			rc = readconcern.Linearizable()
		default:
			rc = readconcern.Local()
		}
		clientOptions.SetReadConcern(rc)
	}

	if config.ReadPreference != "" {
		var rp *readpref.ReadPref
		switch config.ReadPreference {
		case "primaryPreferred":
			rp = readpref.PrimaryPreferred()
		case "secondary":
			rp = readpref.Secondary()
		case "secondaryPreferred":
			rp = readpref.SecondaryPreferred()
		case "nearest":
			rp = readpref.Nearest()
		default:
			rp = readpref.Primary()
		}
		clientOptions.SetReadPreference(rp)
	}

	return clientOptions, nil
}

// GetConn returns the underlying client, used for extending the adapter with custom functions.
func (m *Mongo) GetConn() *mongo.Client {
	return m.conn
}

func (m *Mongo) Collection(coll string) *mongo.Collection {
	return m.conn.Database(m.database).Collection(coll)
}

func (m *Mongo) Disconnect(ctx context.Context) error {
	return m.conn.Disconnect(ctx)
}

func (m *Mongo) NoDocument(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

func (m *Mongo) FindOne(ctx context.Context, coll string, filter interface{}, result interface{}, opts ...*options.FindOneOptions) error {
	ctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()
	return m.Collection(coll).FindOne(ctx, filter, opts...).Decode(result)
}

// FindMany decodes every matching document into results, which must be a pointer to a slice.
func (m *Mongo) FindMany(ctx context.Context, coll string, filter interface{}, results interface{}, opts ...*options.FindOptions) error {
	ctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()
	cursor, err := m.Collection(coll).Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cursor.All(ctx, results)
}

func (m *Mongo) FindOneAndUpdate(ctx context.Context, coll string, filter interface{}, update interface{}, result interface{}, opts ...*options.FindOneAndUpdateOptions) error {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	return m.Collection(coll).FindOneAndUpdate(ctx, filter, update, opts...).Decode(result)
}

func (m *Mongo) InsertOne(ctx context.Context, coll string, doc interface{}) (*mongo.InsertOneResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	return m.Collection(coll).InsertOne(ctx, doc)
}

func (m *Mongo) UpdateOne(ctx context.Context, coll string, filter interface{}, data interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	return m.Collection(coll).UpdateOne(ctx, filter, data, opts...)
}

func (m *Mongo) DeleteOne(ctx context.Context, coll string, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	return m.Collection(coll).DeleteOne(ctx, filter, opts...)
}

func (m *Mongo) Count(ctx context.Context, coll string, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.readTimeout)
	defer cancel()
	return m.Collection(coll).CountDocuments(ctx, filter, opts...)
}

func (m *Mongo) AddUniqueIndex(ctx context.Context, coll, indexKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: indexKey, Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	return m.Collection(coll).Indexes().CreateOne(ctx, indexModel)
}

func (m *Mongo) AddIndex(ctx context.Context, coll, indexKey string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.writeTimeout)
	defer cancel()
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: indexKey, Value: 1}},
	}
	return m.Collection(coll).Indexes().CreateOne(ctx, indexModel)
}

// IsDupError checks to see if an error is duplicate key error or not
func (m *Mongo) IsDupError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
