package states

type OrderStatus string

const (
	OrderPlacedStatus    OrderStatus = "placed"
	OrderApprovedStatus  OrderStatus = "approved"
	OrderDoneStatus      OrderStatus = "done"
	OrderCancelledStatus OrderStatus = "cancelled"
)

type stateEnum struct {
	index   int
	childes []OrderStatus
}

var stateTypeMap = map[OrderStatus]stateEnum{
	OrderPlacedStatus:    {1, []OrderStatus{OrderApprovedStatus, OrderCancelledStatus}},
	OrderApprovedStatus:  {2, []OrderStatus{OrderDoneStatus, OrderCancelledStatus}},
	OrderDoneStatus:      {3, nil},
	OrderCancelledStatus: {4, nil},
}

// FromString returns the status named by value and false when value is not a known status.
func FromString(value string) (OrderStatus, bool) {
	status := OrderStatus(value)
	_, ok := stateTypeMap[status]
	return status, ok
}

func Values() []string {
	return []string{
		string(OrderPlacedStatus),
		string(OrderApprovedStatus),
		string(OrderDoneStatus),
		string(OrderCancelledStatus),
	}
}

func (status OrderStatus) String() string {
	return string(status)
}

func (status OrderStatus) Index() int {
	return stateTypeMap[status].index
}

func (status OrderStatus) Childes() []OrderStatus {
	return stateTypeMap[status].childes
}

func (status OrderStatus) IsTerminal() bool {
	return len(stateTypeMap[status].childes) == 0
}

// HoldsStock reports whether an order in this status still keeps its items reserved.
func (status OrderStatus) HoldsStock() bool {
	return status == OrderPlacedStatus || status == OrderApprovedStatus
}

func (status OrderStatus) CanMoveTo(next OrderStatus) bool {
	for _, child := range status.Childes() {
		if child == next {
			return true
		}
	}
	return false
}
