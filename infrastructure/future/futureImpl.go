package future

import "fmt"

type stream chan IDataFuture

type iFutureImpl struct {
	channel  stream
	capacity int
}

func (future iFutureImpl) Get() IDataFuture {
	futureData, ok := <-future.channel
	if !ok {
		return nil
	}
	return futureData
}

type iDataFutureImpl struct {
	data        interface{}
	futureError IErrorFuture
}

func (futureData iDataFutureImpl) Data() interface{} {
	return futureData.data
}

func (futureData iDataFutureImpl) Error() IErrorFuture {
	if futureData.futureError == nil {
		return nil
	}
	return futureData.futureError
}

type iErrorFutureImpl struct {
	code    ErrorCode
	message string
	reason  error
}

func (errorFuture iErrorFutureImpl) Code() ErrorCode {
	return errorFuture.code
}

func (errorFuture iErrorFutureImpl) Message() string {
	return errorFuture.message
}

func (errorFuture iErrorFutureImpl) Reason() error {
	return errorFuture.reason
}

func (errorFuture iErrorFutureImpl) Error() string {
	return fmt.Sprintf("%s(%d): %s: %v", errorFuture.code, int32(errorFuture.code),
		errorFuture.message, errorFuture.reason)
}
