// Package settings is the generic key/value configuration store. The
// one key the order pipeline depends on is the quote approval
// threshold.
package settings

import "time"

// KeyApprovalThreshold holds the quote total above which a quote needs
// managerial approval. Stored as a plain numeric string (VND).
const KeyApprovalThreshold = "APPROVAL_THRESHOLD"

// DefaultApprovalThreshold applies when the key is absent or malformed.
const DefaultApprovalThreshold = "50000000"

// SystemSetting is one key/value pair.
type SystemSetting struct {
	Key         string    `json:"key" gorm:"primaryKey;size:100"`
	Value       string    `json:"value" gorm:"type:text;not null"`
	Description string    `json:"description" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}
