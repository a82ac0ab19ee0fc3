package mercadopagowebhook

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const paymentStatusConstraint = "payment_events_payment_status_key"

// EventRepository records observed (payment, status) pairs.
type EventRepository interface {
	WithTx(tx *gorm.DB) EventRepository
	// Record inserts the event and reports false when the pair was already recorded.
	Record(ctx context.Context, event *models.PaymentEvent) (bool, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(conn *gorm.DB) EventRepository {
	if conn == nil {
		return nil
	}
	return &eventRepository{db: conn}
}

func (r *eventRepository) WithTx(tx *gorm.DB) EventRepository {
	if tx == nil {
		return r
	}
	return &eventRepository{db: tx}
}

func (r *eventRepository) Record(ctx context.Context, event *models.PaymentEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if res.Error != nil {
		if db.IsUniqueViolation(res.Error, paymentStatusConstraint) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
