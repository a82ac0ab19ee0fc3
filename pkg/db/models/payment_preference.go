package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// PaymentPreference records a checkout handed to the payment processor. The
// external reference is the correlation key echoed back on payment notifications.
type PaymentPreference struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	ExternalReference string              `gorm:"column:external_reference;not null;uniqueIndex"`
	PreferenceID      string              `gorm:"column:preference_id;not null"`
	Currency          string              `gorm:"column:currency;not null"`
	Total             decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	Items             string              `gorm:"column:items;type:text;not null"`
	PayerEmail        *string             `gorm:"column:payer_email"`
	Status            enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	LastPaymentID     *int64              `gorm:"column:last_payment_id"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (PaymentPreference) TableName() string { return "payment_preferences" }

func (p *PaymentPreference) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
