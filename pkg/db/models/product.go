package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/angelmondragon/storefront-backend/pkg/db/types"
)

// Product is a catalog listing shown on the storefront.
type Product struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Slug        string             `gorm:"column:slug;not null;uniqueIndex"`
	Description string             `gorm:"column:description;not null;default:''"`
	Category    string             `gorm:"column:category;not null;index"`
	Price       decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int                `gorm:"column:stock;not null;default:0"`
	Images      dbtypes.StringList `gorm:"column:images;type:text;not null"`
	Colors      dbtypes.StringList `gorm:"column:colors;type:text;not null"`
	IsFeatured  bool               `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
