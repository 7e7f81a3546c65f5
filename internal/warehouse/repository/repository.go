package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories holds the warehouse repositories.
type Repositories struct {
	Material *MaterialRepository
	Receipt  *ReceiptRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Material: NewMaterialRepository(db),
		Receipt:  NewReceiptRepository(db),
	}
}
