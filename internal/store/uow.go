package store

import (
	"context"

	"gorm.io/gorm"
)

// UnitOfWork is the handle every store operation runs against. Inside
// Transactor.Execute it wraps a single transaction.
type UnitOfWork struct {
	DB *gorm.DB
}

type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// Execute runs fn in one transaction. A returned error or a panic rolls back
// every change made through the unit of work.
func (t *Transactor) Execute(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UnitOfWork{DB: tx})
	})
}

// Read runs fn without opening a transaction.
func (t *Transactor) Read(ctx context.Context, fn func(uow *UnitOfWork) error) error {
	return fn(&UnitOfWork{DB: t.db.WithContext(ctx)})
}
