package entity

import "time"

// MaterialReceipt records one inbound delivery (phiếu nhập kho).
// POID links back to the purchase order being received, nil for a
// direct receipt.
type MaterialReceipt struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Code      string    `json:"code" gorm:"size:64;uniqueIndex;not null"`
	POID      *string   `json:"po_id" gorm:"size:32;index"`
	Performer string    `json:"performer" gorm:"size:100"`
	Note      string    `json:"note" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []ReceiptItem `json:"items,omitempty" gorm:"foreignKey:ReceiptID"`
}

func (MaterialReceipt) TableName() string {
	return "wh_material_receipts"
}

// ReceiptItem is one received line, already resolved to a material row.
type ReceiptItem struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	ReceiptID  string  `json:"receipt_id" gorm:"size:32;not null;index"`
	MaterialID string  `json:"material_id" gorm:"size:32;not null"`
	Quantity   float64 `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Unit       string  `json:"unit" gorm:"size:20;default:m"`
	LotNumber  string  `json:"lot_number" gorm:"size:100"`

	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (ReceiptItem) TableName() string {
	return "wh_receipt_items"
}
