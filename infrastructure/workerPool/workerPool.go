package worker_pool

type Task func()

// IWorkerPool runs submitted tasks with at most Capability() of them in
// flight. Wait blocks until every submitted task has returned; no goroutine
// of the pool outlives Wait.
type IWorkerPool interface {
	SubmitTask(task Task) error

	Running() int

	Capability() int

	Wait()
}
