package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories holds the procurement repositories.
type Repositories struct {
	PR       *PRRepository
	PO       *PORepository
	Supplier *SupplierRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		PR:       NewPRRepository(db),
		PO:       NewPORepository(db),
		Supplier: NewSupplierRepository(db),
	}
}
