package grpc_server

import (
	"bytes"
	"encoding/json"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain"
	"github.com/shopfront/order-service/domain/converter"
	"github.com/shopfront/order-service/domain/models/entities"
	"github.com/shopfront/order-service/infrastructure/future"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type orderLineRequest struct {
	ProductId string `json:"productId"`
	Item      string `json:"item"`
	Quantity  int64  `json:"quantity"`
}

// phoneNumber accepts a JSON string or a non-negative integer and keeps
// the digits as a string.
type phoneNumber string

func (phone *phoneNumber) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*phone = phoneNumber(value)
		return nil
	}

	number, err := decimal.NewFromString(string(data))
	if err != nil || !number.IsInteger() || number.IsNegative() {
		return &json.UnmarshalTypeError{Value: "number " + string(data), Type: phoneType}
	}
	*phone = phoneNumber(number.String())
	return nil
}

var phoneType = reflect.TypeOf(phoneNumber(""))

type contactDetailBody struct {
	FirstName     string      `json:"firstName"`
	LastName      string      `json:"lastName"`
	Phone         phoneNumber `json:"phone"`
	Province      string      `json:"province"`
	District      string      `json:"district,omitempty"`
	AddressDetail string      `json:"addressDetail"`
}

type placeOrderRequest struct {
	Products       []orderLineRequest `json:"products"`
	ContactDetail  contactDetailBody  `json:"contactDetail"`
	User           string             `json:"user"`
	Vouchers       []string           `json:"vouchers"`
	Description    string             `json:"description"`
	IdempotencyKey string             `json:"idempotencyKey"`
}

func (req placeOrderRequest) toDomain() domain.PlaceOrderRequest {
	lines := make([]domain.OrderLineRequest, 0, len(req.Products))
	for _, line := range req.Products {
		lines = append(lines, domain.OrderLineRequest{
			ItemId:    line.Item,
			ProductId: line.ProductId,
			Quantity:  line.Quantity,
		})
	}

	return domain.PlaceOrderRequest{
		Lines: lines,
		ContactDetail: entities.ContactDetail{
			FirstName:     req.ContactDetail.FirstName,
			LastName:      req.ContactDetail.LastName,
			Phone:         string(req.ContactDetail.Phone),
			Province:      req.ContactDetail.Province,
			District:      req.ContactDetail.District,
			AddressDetail: req.ContactDetail.AddressDetail,
		},
		Vouchers:       req.Vouchers,
		User:           req.User,
		Description:    req.Description,
		IdempotencyKey: req.IdempotencyKey,
	}
}

type updateStatusRequest struct {
	Id     string `json:"id"`
	Status string `json:"status"`
}

type orderIdRequest struct {
	Id string `json:"id"`
}

type baseResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

type placeOrderResponse struct {
	baseResponse
	OrderId string `json:"orderId"`
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type itemResponse struct {
	Id        string `json:"_id"`
	ProductId string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color,omitempty"`
	Quantity  int64  `json:"quantity"`
}

type orderLineResponse struct {
	ProductId       string        `json:"productId"`
	ProductName     string        `json:"productName"`
	ItemId          string        `json:"itemId"`
	Item            *itemResponse `json:"item"`
	Quantity        int64         `json:"quantity"`
	UnitPrice       moneyResponse `json:"unitPrice"`
	DiscountPercent float64       `json:"discountPercent"`
	FinalUnitPrice  moneyResponse `json:"finalUnitPrice"`

	// catalogue values at read time, absent once the product is removed
	CurrentProductName string   `json:"currentProductName,omitempty"`
	CurrentPrice       *float64 `json:"currentPrice,omitempty"`
}

type voucherResponse struct {
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Discount    float64   `json:"discount"`
	Category    string    `json:"category,omitempty"`
	ExpiresIn   time.Time `json:"expiresIn"`
}

type orderResponse struct {
	Id              string              `json:"_id"`
	Status          string              `json:"status"`
	User            string              `json:"user,omitempty"`
	Description     string              `json:"description,omitempty"`
	ContactDetail   contactDetailBody   `json:"contactDetail"`
	Products        []orderLineResponse `json:"products"`
	Vouchers        []string            `json:"vouchers"`
	AppliedVouchers []voucherResponse   `json:"appliedVouchers"`
	OriginalPrice   moneyResponse       `json:"originalPrice"`
	TotalPrice      moneyResponse       `json:"totalPrice"`
	OrderDate       time.Time           `json:"orderDate"`
	ShipDate        *time.Time          `json:"shipDate"`
}

type getOrderResponse struct {
	baseResponse
	Order orderResponse `json:"order"`
}

type publicVouchersResponse struct {
	baseResponse
	Vouchers []voucherResponse `json:"vouchers"`
}

func voucherResponseOf(view converter.VoucherView) voucherResponse {
	return voucherResponse{
		Code:        view.Code,
		Description: view.Description,
		Discount:    view.Discount,
		Category:    view.Category,
		ExpiresIn:   view.ExpiresIn,
	}
}

func contactDetailOf(view converter.ContactDetailView) contactDetailBody {
	return contactDetailBody{
		FirstName:     view.FirstName,
		LastName:      view.LastName,
		Phone:         phoneNumber(view.Phone),
		Province:      view.Province,
		District:      view.District,
		AddressDetail: view.AddressDetail,
	}
}

func orderResponseOf(view *converter.OrderView) orderResponse {
	lines := make([]orderLineResponse, 0, len(view.OrderLines))
	for _, line := range view.OrderLines {
		lineResponse := orderLineResponse{
			ProductId:       line.ProductId,
			ProductName:     line.ProductName,
			ItemId:          line.ItemId,
			Quantity:        line.Quantity,
			UnitPrice:       moneyResponse(line.UnitPrice),
			DiscountPercent: line.DiscountPercent,
			FinalUnitPrice:  moneyResponse(line.FinalUnitPrice),
		}
		if line.CurrentProductName != "" {
			currentPrice := line.CurrentPrice
			lineResponse.CurrentProductName = line.CurrentProductName
			lineResponse.CurrentPrice = &currentPrice
		}
		if line.Item != nil {
			lineResponse.Item = &itemResponse{
				Id:        line.Item.ID,
				ProductId: line.Item.ProductId,
				Size:      string(line.Item.Size),
				Color:     line.Item.Color,
				Quantity:  line.Item.Quantity,
			}
		}
		lines = append(lines, lineResponse)
	}

	vouchers := make([]voucherResponse, 0, len(view.AppliedVouchers))
	for _, voucher := range view.AppliedVouchers {
		vouchers = append(vouchers, voucherResponseOf(voucher))
	}

	voucherCodes := view.VoucherCodes
	if voucherCodes == nil {
		voucherCodes = []string{}
	}

	return orderResponse{
		Id:              view.ID,
		Status:          view.Status,
		User:            view.User,
		Description:     view.Description,
		ContactDetail:   contactDetailOf(view.ContactDetail),
		Products:        lines,
		Vouchers:        voucherCodes,
		AppliedVouchers: vouchers,
		OriginalPrice:   moneyResponse(view.OriginalPrice),
		TotalPrice:      moneyResponse(view.TotalPrice),
		OrderDate:       view.OrderDate,
		ShipDate:        view.ShipDate,
	}
}

// decodeRequest runs the request-shape filter on body and then decodes it
// into out.
func decodeRequest(validKeys []string, body *structpb.Struct, out interface{}) error {
	if body == nil {
		body = &structpb.Struct{}
	}

	if err := filterRequestBody(validKeys, body); err != nil {
		return err
	}

	raw, err := protojson.Marshal(body)
	if err != nil {
		return domain.ErrValidation("malformed request body")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return domain.ErrValidation("malformed request body key \"" + typeErr.Field + "\"")
		}
		return domain.ErrValidation("malformed request body")
	}
	return nil
}

func encodeResponse(response interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(response)
	if err != nil {
		return nil, errors.Wrap(err, "json.Marshal response failed")
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, errors.Wrap(err, "protojson.Unmarshal response failed")
	}
	return out, nil
}

func grpcCodeOf(code future.ErrorCode) codes.Code {
	switch code {
	case future.NotFound:
		return codes.NotFound
	case future.ValidationError, future.BadRequest:
		return codes.InvalidArgument
	case future.NotAccepted:
		return codes.FailedPrecondition
	case future.Conflict:
		return codes.Aborted
	default:
		return codes.Internal
	}
}

// toStatusError keeps only the error kind and its public message.
func toStatusError(err error) error {
	var orderErr *domain.OrderError
	if !errors.As(err, &orderErr) {
		return status.Error(codes.Internal, string(domain.Transaction)+": Unknown Error")
	}
	return status.Errorf(grpcCodeOf(orderErr.Code), "%s: %s", orderErr.Kind, orderErr.Message)
}
