package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories holds the CRM repositories.
type Repositories struct {
	Quote *QuoteRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Quote: NewQuoteRepository(db),
	}
}
