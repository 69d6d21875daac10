package events

import (
	"context"
	"time"
)

type EventType string

const (
	OrderPlaced        EventType = "OrderPlaced"
	OrderStatusChanged EventType = "OrderStatusChanged"
	OrderDeleted       EventType = "OrderDeleted"
)

type OrderEvent struct {
	EventID     string      `json:"event_id"`
	Type        EventType   `json:"type"`
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id,omitempty"`
	Status      string      `json:"status,omitempty"`
	PrevStatus  string      `json:"prev_status,omitempty"`
	TotalAmount string      `json:"total_amount,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
	Restocked   bool        `json:"restocked"`
	Timestamp   time.Time   `json:"timestamp"`
	RequestID   string      `json:"request_id,omitempty"`
}

type OrderItem struct {
	ItemID      string `json:"item_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

// IPublisher delivers order events after the change that produced them is committed.
type IPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}
