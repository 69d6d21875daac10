package grpc_server

import (
	"sort"
	"strings"

	"github.com/shopfront/order-service/domain"
	"google.golang.org/protobuf/types/known/structpb"
)

type RequestName string

const (
	PlaceOrderRequest        RequestName = "PlaceOrder"
	UpdateOrderStatusRequest RequestName = "UpdateOrderStatus"
	OrderIdRequest           RequestName = "OrderId"
	PublicVouchersRequest    RequestName = "PublicVouchers"
)

// a trailing * marks a required key
func initialRequestFilters() map[RequestName][]string {
	return map[RequestName][]string{
		PlaceOrderRequest:        {"products*", "contactDetail*", "user", "vouchers", "description", "idempotencyKey"},
		UpdateOrderStatusRequest: {"id*", "status*"},
		OrderIdRequest:           {"id*"},
		PublicVouchersRequest:    {},
	}
}

// filterRequestBody rejects keys that are not allowed for the request and
// reports required keys that are absent. Unknown keys are checked first, in
// sorted order, so the same body always yields the same error.
func filterRequestBody(validKeys []string, body *structpb.Struct) error {
	allowed := make(map[string]bool, len(validKeys))
	for _, key := range validKeys {
		name := strings.TrimSuffix(key, "*")
		allowed[name] = strings.HasSuffix(key, "*")
	}

	fields := body.GetFields()
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := allowed[key]; !ok {
			return domain.ErrInvalidRequestField(key)
		}
	}

	for _, key := range validKeys {
		if !strings.HasSuffix(key, "*") {
			continue
		}
		name := strings.TrimSuffix(key, "*")
		value, ok := fields[name]
		if !ok {
			return domain.ErrMissingRequestField(name)
		}
		if _, isNull := value.GetKind().(*structpb.Value_NullValue); isNull {
			return domain.ErrMissingRequestField(name)
		}
	}
	return nil
}
