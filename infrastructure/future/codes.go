package future

// ErrorCode follows the HTTP status the failure would map to.
type ErrorCode int32

const (
	// a request that cannot be parsed
	BadRequest ErrorCode = 400
	// a referenced order, item or product does not exist
	NotFound ErrorCode = 404
	// the action is not allowed in the entity's current status
	NotAccepted ErrorCode = 406
	// a duplicate request key or a concurrent update
	Conflict ErrorCode = 409
	// an invalid request field or a business rejection such as insufficient stock
	ValidationError ErrorCode = 422
	// a store or transaction failure, details stay in the logs
	InternalError ErrorCode = 500
)

var codeNames = map[ErrorCode]string{
	BadRequest:      "BadRequest",
	NotFound:        "NotFound",
	NotAccepted:     "NotAccepted",
	Conflict:        "Conflict",
	ValidationError: "ValidationError",
	InternalError:   "InternalError",
}

func (code ErrorCode) String() string {
	if name, ok := codeNames[code]; ok {
		return name
	}
	return "Unknown"
}
