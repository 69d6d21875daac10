package worker_pool

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var ErrorPoolClosed = errors.New("worker pool closed")

type iWorkerPoolImpl struct {
	group    *errgroup.Group
	capacity int
	running  *int32
	closed   *int32
}

func Factory(capacity int) (IWorkerPool, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("invalid worker pool capacity: %d", capacity)
	}

	group := &errgroup.Group{}
	group.SetLimit(capacity)
	return &iWorkerPoolImpl{
		group:    group,
		capacity: capacity,
		running:  new(int32),
		closed:   new(int32),
	}, nil
}

// SubmitTask blocks while the pool is full.
func (iWorker iWorkerPoolImpl) SubmitTask(task Task) error {
	if atomic.LoadInt32(iWorker.closed) == 1 {
		return ErrorPoolClosed
	}

	iWorker.group.Go(func() error {
		atomic.AddInt32(iWorker.running, 1)
		defer atomic.AddInt32(iWorker.running, -1)
		task()
		return nil
	})
	return nil
}

func (iWorker iWorkerPoolImpl) Running() int {
	return int(atomic.LoadInt32(iWorker.running))
}

func (iWorker iWorkerPoolImpl) Capability() int {
	return iWorker.capacity
}

func (iWorker iWorkerPoolImpl) Wait() {
	atomic.StoreInt32(iWorker.closed, 1)
	_ = iWorker.group.Wait()
}
