package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories holds the sales repositories.
type Repositories struct {
	Order *OrderRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order: NewOrderRepository(db),
	}
}
