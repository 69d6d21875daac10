// Package memory keeps the whole catalog, voucher and order state in process.
// It backs the service when the store mock is enabled and is what the domain
// tests run against.
package memory

import (
	"context"
	"sync"
	"time"
)

type txKey struct{}

type transaction struct {
	mutex sync.Mutex
	undo  []func()
}

// Store is an in-memory implementation of every repository plus the
// transaction manager. Each write is atomic under the store mutex; a
// transaction serialises against other transactions and records an undo
// journal which is replayed in reverse when the unit of work fails.
type Store struct {
	txLock sync.Mutex
	mutex  sync.RWMutex

	items    map[string]itemRecord
	products map[string]productRecord
	vouchers map[string]voucherRecord
	orders   map[string]orderRecord

	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		items:    make(map[string]itemRecord, 64),
		products: make(map[string]productRecord, 64),
		vouchers: make(map[string]voucherRecord, 16),
		orders:   make(map[string]orderRecord, 64),
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (store *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*transaction); ok {
		return fn(ctx)
	}

	store.txLock.Lock()
	defer store.txLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &transaction{undo: make([]func(), 0, 8)}
	committed := false
	defer func() {
		if !committed {
			store.rollback(tx)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	committed = true
	return nil
}

func (store *Store) rollback(tx *transaction) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	tx.mutex.Lock()
	defer tx.mutex.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// journal must be called with the store mutex held.
func (store *Store) journal(ctx context.Context, undo func()) {
	tx, ok := ctx.Value(txKey{}).(*transaction)
	if !ok {
		return
	}
	tx.mutex.Lock()
	tx.undo = append(tx.undo, undo)
	tx.mutex.Unlock()
}
