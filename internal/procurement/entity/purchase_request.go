package entity

import "time"

// PR statuses. A request is ORDERED once attached to a purchase order
// and can never be attached to a second one.
const (
	PRStatusPending = "PENDING"
	PRStatusOrdered = "ORDERED"
)

// PurchaseRequest is one material need line. Requests derived from an
// order carry the order reference; manual replenishment requests do
// not. MaterialName is free text until someone resolves it against the
// warehouse catalog.
type PurchaseRequest struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	OrderID      *string `json:"order_id" gorm:"size:32;index"`
	MaterialName string  `json:"material_name" gorm:"size:300;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:m"`
	SupplierHint string  `json:"supplier_hint" gorm:"size:200"`
	Status       string  `json:"status" gorm:"size:20;not null;default:PENDING"`

	// POID is set when the request is consolidated into a PO.
	POID *string `json:"purchase_order_id" gorm:"size:32;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PurchaseRequest) TableName() string {
	return "proc_purchase_requests"
}
