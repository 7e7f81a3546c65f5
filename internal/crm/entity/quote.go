package entity

import "time"

// Quote statuses. DRAFT and PENDING_APPROVAL are the only entry
// states, chosen at creation from the approval threshold. ACCEPTED is
// reached only through conversion into an order.
const (
	QuoteStatusDraft           = "DRAFT"
	QuoteStatusPendingApproval = "PENDING_APPROVAL"
	QuoteStatusApproved        = "APPROVED"
	QuoteStatusRejected        = "REJECTED"
	QuoteStatusAccepted        = "ACCEPTED"
)

// quoteTransitions is the explicit transition table. Anything not
// listed here is an illegal transition.
var quoteTransitions = map[string][]string{
	QuoteStatusPendingApproval: {QuoteStatusApproved, QuoteStatusRejected},
	QuoteStatusDraft:           {QuoteStatusAccepted},
	QuoteStatusApproved:        {QuoteStatusAccepted},
}

// CanTransition reports whether a quote may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range quoteTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Quote is a priced quotation (báo giá). Never deleted, only
// status-transitioned.
type Quote struct {
	ID              string  `json:"id" gorm:"primaryKey;size:32"`
	Code            string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	CustomerName    string  `json:"customer_name" gorm:"size:200;not null"`
	CustomerAddress string  `json:"customer_address" gorm:"size:500"`
	IntroText       string  `json:"intro_text" gorm:"type:text"`
	FooterText      string  `json:"footer_text" gorm:"type:text"`
	TotalAmount     float64 `json:"total_amount" gorm:"type:decimal(15,2);default:0"`
	Status          string  `json:"status" gorm:"size:20;not null;default:DRAFT"`

	ApproverID    *string `json:"approver_id" gorm:"size:32"`
	ApprovalNotes string  `json:"approval_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []QuoteItem `json:"items,omitempty" gorm:"foreignKey:QuoteID"`
}

func (Quote) TableName() string {
	return "crm_quotes"
}

// QuoteItem is one priced line. Quantity stays a free-form string so a
// range like "50-100" survives round-trips; arithmetic goes through
// the qty package.
type QuoteItem struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	QuoteID string `json:"quote_id" gorm:"size:32;not null;index"`
	STT     int    `json:"stt" gorm:"default:0"`

	ProductName string  `json:"product_name" gorm:"size:200;not null"`
	Unit        string  `json:"unit" gorm:"size:20"`
	Quantity    string  `json:"quantity" gorm:"size:50"`
	Price       float64 `json:"price" gorm:"type:decimal(15,2);not null"`
	Consumption float64 `json:"consumption" gorm:"type:decimal(10,4);default:1.2"`
	ImageURL    string  `json:"image_url" gorm:"size:500"`
	Note        string  `json:"note" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (QuoteItem) TableName() string {
	return "crm_quote_items"
}
