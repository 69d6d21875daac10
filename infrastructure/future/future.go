package future

// IFuture delivers the result of an asynchronous call. Get blocks until the
// result is sent and returns nil once the channel is drained.
type IFuture interface {
	Get() IDataFuture
}

type IDataFuture interface {
	Data() interface{}
	Error() IErrorFuture
}

type IErrorFuture interface {
	Code() ErrorCode
	Message() string
	Reason() error
}
