package entity

import "time"

// PO statuses.
const (
	POStatusDraft     = "DRAFT"
	POStatusSent      = "SENT"
	POStatusPartial   = "PARTIAL"
	POStatusCompleted = "COMPLETED"
	POStatusCancelled = "CANCELLED"
)

// PurchaseOrder consolidates one or more purchase requests for a
// single supplier.
type PurchaseOrder struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	Code        string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	SupplierID  string  `json:"supplier_id" gorm:"size:32;not null;index"`
	Status      string  `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Note        string  `json:"note" gorm:"type:text"`
	CreatedBy   string  `json:"created_by" gorm:"size:32"`
	TotalAmount float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Supplier *Supplier         `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Items    []POItem          `json:"items,omitempty" gorm:"foreignKey:POID"`
	Requests []PurchaseRequest `json:"requests,omitempty" gorm:"foreignKey:POID"`
}

func (PurchaseOrder) TableName() string {
	return "proc_purchase_orders"
}

// POItem is one supplier-facing line. Unit price starts at zero and is
// filled in by manual price entry.
type POItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	POID         string  `json:"po_id" gorm:"size:32;not null;index"`
	MaterialName string  `json:"material_name" gorm:"size:300;not null"`
	Quantity     float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit         string  `json:"unit" gorm:"size:20;default:m"`
	UnitPrice    float64 `json:"unit_price" gorm:"type:decimal(15,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (POItem) TableName() string {
	return "proc_po_items"
}
