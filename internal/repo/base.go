package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Base is embedded by the storefront repositories. It binds the request context
// and can be rebound to a transaction.
type Base struct {
	db *gorm.DB
}

func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx; a nil ctx returns the raw connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Tx rebinds the base to tx. A nil tx keeps the current connection.
func (b Base) Tx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

func (b Base) Create(ctx context.Context, value any) error {
	return b.DB(ctx).Create(value).Error
}

// First loads the first row matching cond into dest and reports whether one existed.
func (b Base) First(ctx context.Context, dest any, cond string, args ...any) (bool, error) {
	err := b.DB(ctx).Where(cond, args...).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
