package entity

import "time"

// Supplier statuses.
const (
	SupplierStatusActive   = "active"
	SupplierStatusInactive = "inactive"
)

// Supplier is a fabric or accessory vendor.
type Supplier struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	Name        string `json:"name" gorm:"size:200;not null"`
	ContactInfo string `json:"contact_info" gorm:"size:500"`
	Address     string `json:"address" gorm:"size:500"`
	Status      string `json:"status" gorm:"size:20;default:active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "proc_suppliers"
}
