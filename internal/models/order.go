package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusReceived   OrderStatus = "received"
)

var statusRank = map[OrderStatus]int{
	OrderStatusProcessing: 0,
	OrderStatusConfirmed:  1,
	OrderStatusShipped:    2,
	OrderStatusReceived:   3,
}

func (s OrderStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// AdminSettable reports whether an admin may put an order into s.
// received is reserved for the customer's delivery confirmation.
func (s OrderStatus) AdminSettable() bool {
	return s == OrderStatusProcessing || s == OrderStatusConfirmed || s == OrderStatusShipped
}

// Before reports whether s comes strictly before other in the lifecycle.
func (s OrderStatus) Before(other OrderStatus) bool {
	return statusRank[s] < statusRank[other]
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	State      string `json:"state"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null"    json:"orderId"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"    json:"product"`
	Quantity  int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	Price     float64   `gorm:"not null;check:price >= 0"   json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey"                     json:"_id"`
	OrderNumber     string      `gorm:"uniqueIndex;not null"                     json:"orderNumber"`
	UserID          uuid.UUID   `gorm:"type:uuid;index;not null"                 json:"user"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"products"`
	TotalAmount     float64     `gorm:"not null;check:total_amount >= 0"         json:"totalAmount"`
	StripeSessionID string      `gorm:"uniqueIndex;not null"                     json:"stripeSessionId"`
	ShippingAddress Address     `gorm:"embedded;embeddedPrefix:shipping_"        json:"shippingAddress"`
	ShippingCost    float64     `gorm:"not null"                                 json:"shippingCost"`
	PaymentMethod   string      `gorm:"not null"                                 json:"paymentMethod"`
	Status          OrderStatus `gorm:"type:varchar(20);index;not null"          json:"status"`
	CreatedAt       time.Time   `gorm:"index"                                    json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderStatusProcessing
	}
	return nil
}

func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
