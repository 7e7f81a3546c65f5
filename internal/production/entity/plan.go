package entity

import "time"

// Plan statuses.
const (
	PlanStatusPlanned    = "PLANNED"
	PlanStatusInProgress = "IN_PROGRESS"
	PlanStatusCompleted  = "COMPLETED"
)

// Stage statuses.
const (
	StageStatusPending    = "PENDING"
	StageStatusInProgress = "IN_PROGRESS"
	StageStatusCompleted  = "COMPLETED"
)

// StageNames is the fixed pipeline every plan is created with, in
// sequence order.
var StageNames = []string{
	"1. CUTTING",
	"2. SEWING",
	"3. QC",
	"4. PACKING",
}

// ProductionPlan tracks one order through the shop floor. One plan per
// order, enforced by the unique index.
type ProductionPlan struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	OrderID   string     `json:"order_id" gorm:"size:32;uniqueIndex;not null"`
	Status    string     `json:"status" gorm:"size:20;default:PLANNED"`
	StartDate *time.Time `json:"start_date"`
	Note      string     `json:"note" gorm:"size:500"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Stages []ProductionStage `json:"stages,omitempty" gorm:"foreignKey:PlanID"`
}

func (ProductionPlan) TableName() string {
	return "prod_plans"
}

// ProductionStage is one step of the pipeline. Quantities are counted
// pieces; no cross-stage validation is applied, the floor reports what
// it reports.
type ProductionStage struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	PlanID           string    `json:"plan_id" gorm:"size:32;not null;index"`
	Name             string    `json:"name" gorm:"size:50;not null"`
	Sequence         int       `json:"sequence" gorm:"not null"`
	Status           string    `json:"status" gorm:"size:20;default:PENDING"`
	QuantityTarget   int       `json:"quantity_target" gorm:"default:0"`
	QuantityProduced int       `json:"quantity_produced" gorm:"default:0"`
	QuantityError    int       `json:"quantity_error" gorm:"default:0"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ProductionStage) TableName() string {
	return "prod_stages"
}
