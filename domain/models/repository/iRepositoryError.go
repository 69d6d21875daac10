package repository

import "github.com/pkg/errors"

type ErrorCode int

const (
	BadRequestErr  ErrorCode = 400
	NotFoundErr    ErrorCode = 404
	NotAcceptedErr ErrorCode = 406
	ConflictErr    ErrorCode = 409
	ValidationErr  ErrorCode = 422
	InternalErr    ErrorCode = 500
)

var ErrorNotFound = errors.New("document not found")
var ErrorInsufficientStock = errors.New("insufficient stock")
var ErrorDuplicateKey = errors.New("duplicate key")
var ErrorRemoveFailed = errors.New("remove document failed")
var ErrorUpdateFailed = errors.New("update document failed")

type IRepoError interface {
	error
	Code() ErrorCode
	Message() string
	Reason() error
}

// IsNotFound reports whether err is a repository error caused by a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrorNotFound)
}

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrorInsufficientStock)
}
