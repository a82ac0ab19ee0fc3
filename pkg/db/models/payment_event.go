package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// PaymentEvent is one observed (payment, status) pair. The pair is unique, so a
// status the system has already applied is never applied twice.
type PaymentEvent struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	PaymentID         int64               `gorm:"column:payment_id;not null;uniqueIndex:payment_events_payment_status_key"`
	Status            enums.PaymentStatus `gorm:"column:status;not null;uniqueIndex:payment_events_payment_status_key"`
	StatusDetail      string              `gorm:"column:status_detail;not null;default:''"`
	ExternalReference string              `gorm:"column:external_reference;not null;default:''"`
	Action            string              `gorm:"column:action;not null;default:''"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (PaymentEvent) TableName() string { return "payment_events" }

func (e *PaymentEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
