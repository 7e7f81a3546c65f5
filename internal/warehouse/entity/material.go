package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Material types.
const (
	MaterialTypeFabric    = "FABRIC"
	MaterialTypeAccessory = "ACCESSORY"
	MaterialTypeOther     = "OTHER"
)

// Inventory movement types. Quantity on the log is a signed delta:
// positive for IMPORT, negative for EXPORT.
const (
	MovementImport = "IMPORT"
	MovementExport = "EXPORT"
)

// Material is one raw-material stock line. Quantity moves only through
// receipt reconciliation and export; both paths write an InventoryLog
// row. Name carries a unique index so concurrent receipts resolving
// the same new material converge on a single row.
type Material struct {
	ID       string  `json:"id" gorm:"primaryKey;size:32"`
	Code     string  `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Name     string  `json:"name" gorm:"size:300;uniqueIndex;not null"`
	Type     string  `json:"type" gorm:"size:20;default:FABRIC"`
	Unit     string  `json:"unit" gorm:"size:20;default:m"`
	Quantity float64 `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`

	// MinStock is the low-stock alert threshold. Alert-only: nothing
	// blocks on it.
	MinStock float64 `json:"min_stock" gorm:"type:decimal(12,4);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Material) TableName() string {
	return "wh_materials"
}

// InventoryLog is the append-only stock movement trail.
type InventoryLog struct {
	ID         string         `json:"id" gorm:"primaryKey;size:32"`
	MaterialID string         `json:"material_id" gorm:"size:32;not null;index"`
	Type       string         `json:"type" gorm:"size:20;not null"`
	Quantity   float64        `json:"quantity" gorm:"type:decimal(12,4);not null"`
	Reason     string         `json:"reason" gorm:"size:500"`
	Metadata   datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (InventoryLog) TableName() string {
	return "wh_inventory_logs"
}
