package future

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSendFutureChannel(t *testing.T) {
	futureTest := Factory().SetCapacity(1).SetData("reserved").BuildAndSend()
	futureData := futureTest.Get()
	require.Equal(t, "reserved", futureData.Data())
	require.Nil(t, futureData.Error())
}

func TestSendErrorFutureChannel(t *testing.T) {
	futureTest := Factory().SetCapacity(1).
		SetError(ValidationError, "Insufficient Stock", errors.New("stock")).
		BuildAndSend()
	futureData := futureTest.Get()
	require.Equal(t, ValidationError, futureData.Error().Code())
	require.Equal(t, "Insufficient Stock", futureData.Error().Message())
	require.Nil(t, futureData.Data())
}

func TestSetErrorOfCopiesError(t *testing.T) {
	source := Factory().SetError(NotFound, "Item Not Found", errors.New("item")).BuildError()
	futureData := Factory().SetCapacity(1).SetErrorOf(source).BuildAndSend().Get()
	require.Equal(t, NotFound, futureData.Error().Code())
	require.Equal(t, "item", futureData.Error().Reason().Error())
}

func TestGetReturnsNilAfterChannelDrained(t *testing.T) {
	futureTest := Factory().SetCapacity(1).SetData(1).BuildAndSend()
	require.NotNil(t, futureTest.Get())
	require.Nil(t, futureTest.Get())
}

func TestBuildError(t *testing.T) {
	require.Nil(t, Factory().BuildError())

	errorFuture := Factory().SetError(NotFound, "Item Not Found", errors.New("item")).BuildError()
	require.NotNil(t, errorFuture)
	require.Equal(t, NotFound, errorFuture.Code())
	require.Equal(t, "Item Not Found", errorFuture.Message())
}

func TestErrorCodeNames(t *testing.T) {
	require.Equal(t, "ValidationError", ValidationError.String())
	require.Equal(t, "Unknown", ErrorCode(418).String())

	errorFuture := Factory().SetError(Conflict, "Duplicate Request", errors.New("key")).BuildError()
	err, ok := errorFuture.(error)
	require.True(t, ok)
	require.Equal(t, "Conflict(409): Duplicate Request: key", err.Error())
}
