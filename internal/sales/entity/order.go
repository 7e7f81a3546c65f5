package entity

import "time"

// Order statuses.
const (
	OrderStatusQuote     = "QUOTE"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusProducing = "PRODUCING"
	OrderStatusDone      = "DONE"
)

// Procurement derivation marker. Conversion sets PENDING before the
// background derivation runs; the task flips it to GENERATED or FAILED
// so a failed run can be spotted and retried manually.
const (
	ProcurementStateNone      = ""
	ProcurementStatePending   = "PENDING"
	ProcurementStateGenerated = "GENERATED"
	ProcurementStateFailed    = "FAILED"
)

// Order is a confirmed (or directly captured) garment order.
type Order struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Code         string     `json:"code" gorm:"size:64;uniqueIndex;not null"`
	CustomerName string     `json:"customer_name" gorm:"size:200;not null"`
	ContactInfo  string     `json:"contact_info" gorm:"size:500"`
	Status       string     `json:"status" gorm:"size:20;not null;default:QUOTE"`
	Deadline     *time.Time `json:"deadline"`
	TotalAmount  float64    `json:"total_amount" gorm:"type:decimal(15,2);default:0"`

	// QuoteID links back to the originating quote, when any.
	QuoteID          *string `json:"quote_id" gorm:"size:32;index"`
	ProcurementState string  `json:"procurement_state" gorm:"size:20;default:''"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "sales_orders"
}

// OrderItem is one product line. Quantity is a settled integer here:
// ranges are resolved at conversion time and direct entry requires a
// number.
type OrderItem struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`
	Code    string `json:"code" gorm:"size:128"`

	Name     string `json:"name" gorm:"size:200;not null"`
	Size     string `json:"size" gorm:"size:50"`
	Color    string `json:"color" gorm:"size:50"`
	Quantity int    `json:"quantity" gorm:"not null;default:0"`

	// Consumption is meters of main fabric per finished unit,
	// inherited from the quote item or defaulted to 1.2.
	Consumption float64 `json:"consumption" gorm:"type:decimal(10,4);default:1.2"`
	Note        string  `json:"note" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "sales_order_items"
}
