package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (typical e-commerce flow)
	OrderStatusPending     OrderStatus = "pending"       // Order placed, awaiting confirmation
	OrderStatusConfirmed   OrderStatus = "confirmed"     // Confirmed by seller
	OrderStatusReadyToShip OrderStatus = "ready_to_ship" // Packed and ready for dispatch
	OrderStatusShipped     OrderStatus = "shipped"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "delivered"     // Customer received the item
	OrderStatusCancelled   OrderStatus = "cancelled"     // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	Ref           string        `gorm:"uniqueIndex" json:"ref"`
	UserID        string        `gorm:"index" json:"user_id,omitempty"`
	CartID        string        `json:"cart_id"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Subtotal      float64       `json:"subtotal"`
	TaxAmount     float64       `json:"tax_amount"`
	ShippingCost  float64       `json:"shipping_cost"`
	TotalAmount   float64       `json:"total_amount"`
	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod string        `json:"payment_method"` // e.g. "prepaid", "cod"

	// Shipping contact, forwarded to the courier API on dispatch
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`

	ShipmentID string    `json:"shipment_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	OrderID   string  `gorm:"index" json:"-"`
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Image     string  `json:"image,omitempty"`
	Weight    string  `json:"weight,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}
