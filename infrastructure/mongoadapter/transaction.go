package mongoadapter

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// WithTransaction runs fn inside a multi-document transaction. The context
// passed to fn is a mongo.SessionContext, so every operation issued with it
// joins the transaction. The transaction commits when fn returns nil and is
// aborted otherwise; the session is always ended before returning.
// The driver re-runs fn on TransientTransactionError, so fn must be
// safe to repeat from scratch. A call made with a context that already
// carries a session joins that session's transaction.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := m.conn.StartSession()
	if err != nil {
		return errors.Wrap(err, "StartSession failed")
	}
	defer session.EndSession(context.Background())

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOptions)
	return err
}
