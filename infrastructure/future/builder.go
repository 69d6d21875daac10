package future

type Builder struct {
	iFuture     *iFutureImpl
	dataFuture  *iDataFutureImpl
	errorFuture *iErrorFutureImpl
}

func Factory() Builder {
	return Builder{
		iFuture: &iFutureImpl{},
	}
}

func (builder Builder) SetCapacity(capacity int) Builder {
	builder.iFuture.capacity = capacity
	return builder
}

func (builder Builder) SetData(data interface{}) Builder {
	if builder.dataFuture == nil {
		builder.dataFuture = &iDataFutureImpl{}
	}
	builder.dataFuture.data = data
	return builder
}

func (builder Builder) SetError(code ErrorCode, message string, reason error) Builder {
	builder.errorFuture = &iErrorFutureImpl{
		code:    code,
		message: message,
		reason:  reason,
	}

	if builder.dataFuture == nil {
		builder.dataFuture = &iDataFutureImpl{}
	}

	builder.dataFuture.futureError = builder.errorFuture
	return builder
}

func (builder Builder) SetErrorOf(errorFuture IErrorFuture) Builder {
	return builder.SetError(errorFuture.Code(), errorFuture.Message(), errorFuture.Reason())
}

func (builder Builder) channel() stream {
	if builder.iFuture.channel == nil {
		builder.iFuture.channel = make(stream, builder.iFuture.capacity)
	}
	return builder.iFuture.channel
}

func (builder Builder) payload() IDataFuture {
	if builder.dataFuture == nil {
		return iDataFutureImpl{}
	}
	return *builder.dataFuture
}

func (builder Builder) Send() {
	channel := builder.channel()
	defer close(channel)
	channel <- builder.payload()
}

func (builder Builder) BuildAndSend() IFuture {
	builder.Send()
	return builder.iFuture
}

// BuildError returns the error set on the builder, or nil when none was set.
func (builder Builder) BuildError() IErrorFuture {
	if builder.errorFuture == nil {
		return nil
	}
	return builder.errorFuture
}
